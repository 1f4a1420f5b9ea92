package file

import (
	"io"
	"strconv"

	"github.com/kazz187/taskdeck/internal/eventbus"
)

// progressReader publishes upload.progress events as the request body is
// consumed. Progress is reported in whole percent, at most once per step.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	step     int
	report   func(percent int)
	finished bool
}

func newProgressReader(r io.Reader, total int64, step int, report func(int)) *progressReader {
	return &progressReader{r: r, total: total, step: step, last: -1, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct-p.last >= p.step || (pct == 100 && p.last != 100) {
			p.last = pct
			p.report(pct)
		}
	}
	if err == io.EOF {
		p.done()
	}
	return n, err
}

func (p *progressReader) done() {
	if p.finished {
		return
	}
	p.finished = true
	if p.last != 100 {
		p.last = 100
		p.report(100)
	}
}

func progressEvent(uploadID, userID string, percent int) *eventbus.Event {
	return eventbus.NewEvent(eventbus.TypeUploadProgress, uploadID, userID, []string{userID}, map[string]string{
		"upload_id": uploadID,
		"progress":  strconv.Itoa(percent),
	})
}
