package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Upload documents dropped into a directory",
	Long: `Watches a directory and uploads each file placed in it to the current
session. The slot is taken from the file name, so pan_card.pdf goes to
the pan_card slot and director_kyc_1.jpg to the second director's KYC.
Files whose names match no slot are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to watch %s: not a directory", dir)
	}

	cmd.Printf("Watching %s for session %s (Ctrl+C to stop)\n", dir, sessionID)
	return watchDir(ctx, cmd, sessionID, dir)
}

// writeSettle is how long a file must go without events before it is
// uploaded. Copies into the directory emit several Write events.
var writeSettle = 500 * time.Millisecond

// watchDir uploads matching files until ctx is cancelled.
func watchDir(ctx context.Context, cmd *cobra.Command, sessionID, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	queue := newUploadQueue(writeSettle)
	ticker := time.NewTicker(writeSettle / 4)
	defer ticker.Stop()

	seen := make(map[string]fileStamp)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path, slot, ok := uploadCandidate(event); ok {
				queue.touch(path, slot, time.Now())
			}
		case now := <-ticker.C:
			for _, up := range queue.due(now) {
				stamp, err := stampOf(up.path)
				if err != nil || stamp.size == 0 || seen[up.path] == stamp {
					continue
				}
				if err := uploadFile(ctx, cmd, sessionID, up.slot, up.path); err != nil {
					logger.Warn("upload %s: %v", up.path, err)
					cmd.PrintErrf("Error: %v\n", err)
					continue
				}
				seen[up.path] = stamp
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", dir, err)
		}
	}
}

type queuedUpload struct {
	path string
	slot string
	last time.Time
}

// uploadQueue holds files until their writes settle.
type uploadQueue struct {
	settle  time.Duration
	pending map[string]queuedUpload
}

func newUploadQueue(settle time.Duration) *uploadQueue {
	return &uploadQueue{settle: settle, pending: make(map[string]queuedUpload)}
}

// touch records an event for path, restarting its settle period.
func (q *uploadQueue) touch(path, slot string, now time.Time) {
	q.pending[path] = queuedUpload{path: path, slot: slot, last: now}
}

// due removes and returns the files quiet for the settle period,
// ordered by path.
func (q *uploadQueue) due(now time.Time) []queuedUpload {
	var ready []queuedUpload
	for path, up := range q.pending {
		if now.Sub(up.last) < q.settle {
			continue
		}
		ready = append(ready, up)
		delete(q.pending, path)
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].path < ready[j].path })
	return ready
}

// uploadCandidate returns the file and slot an event should upload.
func uploadCandidate(event fsnotify.Event) (string, string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", "", false
	}
	slot, ok := slotForFile(event.Name)
	if !ok {
		return "", "", false
	}
	return event.Name, slot, true
}

// slotForFile infers the document slot from a file name such as
// "director_kyc_1.jpg" or "PAN_Card-scan.pdf".
func slotForFile(path string) (string, bool) {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if i := strings.IndexAny(stem, " -."); i >= 0 {
		stem = stem[:i]
	}
	if _, _, err := domain.ParseDocumentSlot(stem); err != nil {
		return "", false
	}
	return stem, true
}

// fileStamp identifies one version of a file.
type fileStamp struct {
	size    int64
	modTime time.Time
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	if info.IsDir() {
		return fileStamp{}, fmt.Errorf("%s is a directory", path)
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime()}, nil
}
