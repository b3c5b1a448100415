package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ai_detective/src/casefile"
	"ai_detective/src/logger"

	"github.com/bytedance/sonic"
)

// PortraitManifest lists the portrait files each suspect can show
type PortraitManifest struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Role    string            `json:"role"`
	Folder  string            `json:"folder"`
	Default string            `json:"default"`
	Moods   map[string]string `json:"moods"`
}

// GenerateAssets writes one persona prompt per suspect, the case summary and
// the portrait manifest under dir. It returns the files written.
func GenerateAssets(dir string, db *casefile.Database) ([]string, error) {
	promptDir := filepath.Join(dir, "prompts")
	if err := os.MkdirAll(promptDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	var written []string
	write := func(path string, data []byte) error {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	manifest := make([]PortraitManifest, 0, len(db.IDs()))
	for _, id := range db.IDs() {
		prompt, err := db.SystemPrompt(id)
		if err != nil {
			return written, err
		}
		path := filepath.Join(promptDir, "suspect_"+strconv.Itoa(id)+".txt")
		if err := write(path, []byte(prompt)); err != nil {
			return written, err
		}

		mapping, err := db.EmotionMapping(id)
		if err != nil {
			return written, err
		}
		moods := make(map[string]string, len(mapping))
		for mood, img := range mapping {
			if mood != "default" {
				moods[mood] = img
			}
		}
		manifest = append(manifest, PortraitManifest{
			ID:      id,
			Name:    db.Name(id),
			Role:    db.Role(id),
			Folder:  db.Folder(id),
			Default: db.DefaultImage(id),
			Moods:   moods,
		})
	}

	if err := write(filepath.Join(dir, casefile.CaseSummaryFile), []byte(casefile.CaseSummary())); err != nil {
		return written, err
	}

	data, err := sonic.ConfigStd.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return written, fmt.Errorf("failed to marshal portrait manifest: %w", err)
	}
	if err := write(filepath.Join(dir, "portraits.json"), data); err != nil {
		return written, err
	}

	logger.Info().Int("files", len(written)).Str("dir", dir).Msg("Assets generated")
	return written, nil
}
