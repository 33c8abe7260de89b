package extraction

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lien-cli/internal/model"
)

// record is the wire form of one extraction. raw_fields keys go through
// model.ParseSlot so text-extractor aliases are accepted.
type record struct {
	SiteID    string            `json:"site_id"`
	RawFields map[string]string `json:"raw_fields"`
	SourceRef string            `json:"source_ref"`
	Hints     []model.Hint      `json:"hints"`
}

func (r record) extraction(opts Options) (model.RawExtraction, error) {
	raw := model.RawExtraction{
		SiteID:    strings.TrimSpace(r.SiteID),
		SourceRef: r.SourceRef,
		Hints:     r.Hints,
		RawFields: make(map[model.Slot]string, len(r.RawFields)),
	}
	if raw.SiteID == "" {
		raw.SiteID = opts.SiteID
	}
	if raw.SiteID == "" {
		return raw, eris.New("no site_id and no default site")
	}
	for k, v := range r.RawFields {
		slot, ok := model.ParseSlot(columnKey(k))
		if !ok {
			continue
		}
		raw.RawFields[slot] = v
	}
	return raw, nil
}

// DecodeJSONL decodes one extraction per line. Blank lines are skipped.
// Both channels are closed when processing completes.
func DecodeJSONL(ctx context.Context, r io.Reader, opts Options) (<-chan model.RawExtraction, <-chan error) {
	outCh := make(chan model.RawExtraction, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			var rec record
			if err := json.Unmarshal([]byte(text), &rec); err != nil {
				errCh <- eris.Wrapf(err, "jsonl: line %d", line)
				return
			}
			raw, err := rec.extraction(opts)
			if err != nil {
				errCh <- eris.Wrapf(err, "jsonl: line %d", line)
				return
			}

			select {
			case outCh <- raw:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- eris.Wrap(err, "jsonl: scan")
		}
	}()

	return outCh, errCh
}

// DecodeJSONArray decodes a JSON array of extractions, streaming.
// Both channels are closed when processing completes.
func DecodeJSONArray(ctx context.Context, r io.Reader, opts Options) (<-chan model.RawExtraction, <-chan error) {
	outCh := make(chan model.RawExtraction, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for i := 0; decoder.More(); i++ {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var rec record
			if err := decoder.Decode(&rec); err != nil {
				errCh <- eris.Wrapf(err, "json: decode element %d", i)
				return
			}
			raw, err := rec.extraction(opts)
			if err != nil {
				errCh <- eris.Wrapf(err, "json: element %d", i)
				return
			}

			select {
			case outCh <- raw:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadJSONArray collects every element of a JSON array of extractions.
func ReadJSONArray(ctx context.Context, r io.Reader, opts Options) ([]model.RawExtraction, error) {
	return collect(DecodeJSONArray(ctx, r, opts))
}
