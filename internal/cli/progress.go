package cli

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/codeprompt/internal/commands"
	"github.com/temirov/codeprompt/internal/types"
)

// dumpWithProgress runs the dumper while a second goroutine logs every file it writes.
// The progress channel is closed when the dump returns, which ends the consumer.
func dumpWithProgress(logger *zap.Logger, dumper commands.ContentDumper, sink io.Writer) (types.DumpResult, error) {
	var group errgroup.Group
	progress := make(chan types.ProgressEvent)
	searching := dumper.Configuration.Search.Active()

	var result types.DumpResult
	group.Go(func() error {
		defer close(progress)
		dumpResult, dumpError := dumper.Dump(sink, progress)
		result = dumpResult
		return dumpError
	})

	group.Go(func() error {
		for event := range progress {
			message := fmt.Sprintf(progressMessageFormat, event.RelativePath)
			if searching {
				logger.Info(message, zap.Int(matchesFieldName, event.Matches))
				continue
			}
			logger.Info(message)
		}
		return nil
	})

	if waitError := group.Wait(); waitError != nil {
		return result, waitError
	}
	return result, nil
}
