// internal/model/job.go
package model

// JobKind distinguishes text jobs from pre-rendered byte jobs
type JobKind string

const (
	JobKindText   JobKind = "TEXT"
	JobKindBuffer JobKind = "BUFFER"
)

// PrintJob is a unit of work submitted for printing. It is immutable once
// created: a text job carries the body and optional title, a buffer job
// carries ready-to-send printer bytes that are never re-encoded.
type PrintJob struct {
	kind   JobKind
	text   string
	title  string
	buffer []byte
}

// NewTextJob creates a text job
func NewTextJob(text, title string) *PrintJob {
	return &PrintJob{kind: JobKindText, text: text, title: title}
}

// NewBufferJob creates a buffer job holding a private copy of buf
func NewBufferJob(buf []byte) *PrintJob {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return &PrintJob{kind: JobKindBuffer, buffer: cp}
}

func (j *PrintJob) Kind() JobKind { return j.kind }
func (j *PrintJob) Text() string  { return j.text }
func (j *PrintJob) Title() string { return j.title }

// Buffer returns a copy of the job bytes
func (j *PrintJob) Buffer() []byte {
	cp := make([]byte, len(j.buffer))
	copy(cp, j.buffer)
	return cp
}

// Size returns the payload size in bytes before rendering
func (j *PrintJob) Size() int {
	if j.kind == JobKindBuffer {
		return len(j.buffer)
	}
	return len(j.text)
}
