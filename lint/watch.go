package lint

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal"
)

// Watch re-analyzes manifests below dirs whenever they change, until ctx
// is done.
func Watch(ctx context.Context, logger *zap.Logger, engine *internal.Engine, dirs []string, report internal.ReportFunc) error {
	w, err := internal.NewWatcher(engine, logger, report)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}
	if logger != nil {
		logger.Info("watching for manifest changes", zap.Strings("dirs", dirs))
	}

	err = w.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
