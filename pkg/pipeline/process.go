package pipeline

import (
	"image"
	"time"

	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/errors"
	mio "github.com/matzehuels/markstack/pkg/io"
)

// ProcessFile runs one image through the engine and writes the result to
// out. Failures, including panics, are reported in the record with
// State set to failed.
func ProcessFile(engine *watermark.Engine, in, out string) (rec Record) {
	start := time.Now()
	rec = Record{Input: in, Output: out}

	fail := func(err error) Record {
		rec.State = watermark.StateFailed
		rec.Err = err
		rec.Code = errors.GetCode(err)
		rec.Reason = errors.UserMessage(err)
		rec.Duration = time.Since(start)
		return rec
	}
	defer func() {
		if p := recover(); p != nil {
			rec = fail(errors.New(errors.ErrCodeInternal, "processing %s panicked: %v", in, p))
		}
	}()

	d, err := mio.DecodeFile(in)
	if err != nil {
		return fail(err)
	}
	rec.State = watermark.StateLoaded

	if x := engine.NumberExtractor(); x != nil {
		if n, ok := x.Extract(in); ok {
			rec.Number = n
		} else {
			rec.Warnings = append(rec.Warnings, errors.New(errors.ErrCodeNoNumber, "no number in file name").Error())
		}
	}

	res, err := engine.Process(d.Image, rec.Number)
	if err != nil {
		return fail(err)
	}
	for _, w := range res.Warnings {
		rec.Warnings = append(rec.Warnings, w.Error())
	}

	if err := mio.EncodeFile(out, res.Image, d.Opaque); err != nil {
		return fail(err)
	}
	rec.State = watermark.StateSaved
	rec.Duration = time.Since(start)
	return rec
}

// LoadGraphic decodes a graphic mark from disk.
func LoadGraphic(path string) (image.Image, error) {
	d, err := mio.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return d.Image, nil
}
