package activity

// nopSink discards every entry.
type nopSink struct{}

// NewNopSink returns a Sink that discards all entries.
func NewNopSink() Sink {
	return nopSink{}
}

func (nopSink) UserActivity(UserActivityEntry) {}

func (nopSink) TaskEvent(TaskEventEntry) {}
