package pipeline

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/project"
)

// BatchItem is the outcome of one configuration in a batch run.
type BatchItem struct {
	Name     string
	Dir      string
	Manifest project.Manifest
	Fit      model.FitResult
	Err      error
}

// RunBatch generates and exports every configuration into its own
// sub-directory of outDir. A failing configuration is recorded and the
// batch continues.
func RunBatch(configs []model.HolderConfig, outDir string, opts Options, logger *zap.Logger) []BatchItem {
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make([]BatchItem, 0, len(configs))
	for _, cfg := range configs {
		item := BatchItem{
			Name: cfg.Name,
			Dir:  filepath.Join(outDir, FileBase(cfg.Name)),
		}

		res, err := Generate(cfg, logger)
		item.Fit = res.Fit
		if err == nil {
			item.Manifest, err = Export(res, item.Dir, opts, logger)
		}
		if err != nil {
			item.Err = err
			if !errors.Is(err, ErrInfeasible) {
				logger.Error("batch item failed", zap.String("holder", cfg.Name), zap.Error(err))
			}
		}
		items = append(items, item)
	}
	return items
}

// Failed counts the batch items that produced an error.
func Failed(items []BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
