package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/ocr"
)

// ReadPDFDir extracts one filing per PDF in dir, in file name order, or one
// per non-blank page when opts.SplitPages is set. A PDF that yields no text
// is logged and skipped; the run carries on with the rest. Every filing is
// attributed to opts.SiteID.
func ReadPDFDir(ctx context.Context, ext ocr.Extractor, dir string, opts Options, concurrency int) ([]model.RawExtraction, error) {
	if opts.SiteID == "" {
		return nil, eris.New("extraction: pdf input needs a site id")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: read dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([][]model.RawExtraction, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			text, err := ext.ExtractText(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("extraction: pdf text failed, skipping",
					zap.String("path", path),
					zap.Error(err),
				)
				return nil
			}
			if strings.TrimSpace(text) == "" {
				zap.L().Warn("extraction: pdf has no text layer, skipping", zap.String("path", path))
				return nil
			}
			base := filepath.Base(path)
			if !opts.SplitPages {
				results[i] = []model.RawExtraction{FromText(opts.SiteID, base, text)}
				return nil
			}
			for n, page := range ocr.Pages(text) {
				ref := fmt.Sprintf("%s#p%d", base, n+1)
				results[i] = append(results[i], FromText(opts.SiteID, ref, page))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "extraction: read pdfs")
	}

	out := make([]model.RawExtraction, 0, len(results))
	for _, r := range results {
		out = append(out, r...)
	}
	zap.L().Info("extraction: pdfs read",
		zap.String("dir", dir),
		zap.Int("files", len(paths)),
		zap.Int("filings", len(out)),
	)
	return out, nil
}
