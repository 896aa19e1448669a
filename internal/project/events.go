package project

// Stage names a step of workspace processing.
type Stage string

const (
	// StageRead is reading a scene from disk.
	StageRead Stage = "read"
	// StageIndex is scanning a scene into the index.
	StageIndex Stage = "index"
	// StageValidate is generating diagnostics for a scene.
	StageValidate Stage = "validate"
)

// Status reports the state of a scene within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is one progress report. An empty File describes the whole run.
type Event struct {
	File   string
	Stage  Stage
	Status Status
	// Errors and Warnings count a scene's diagnostics once its
	// validation finishes.
	Errors   int
	Warnings int
	// SceneList is the startup *scene_list, sent once indexing ends.
	SceneList []string
}

// ProgressSink receives progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
