package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/deckscore/deckscore/internal/common"
)

// artifactSchemaVersion is bumped whenever a serialized model layout changes
// incompatibly. Loading an artifact with a different version fails rather
// than silently misreading weights.
const artifactSchemaVersion = 1

type artifactEnvelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	SavedAt       time.Time       `json:"savedAt"`
	Artifact      json.RawMessage `json:"artifact"`
}

// SaveArtifact serializes one fitted model component to its own JSON file.
func (s *FileStore) SaveArtifact(ctx context.Context, name string, artifact any) error {
	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", name, err)
	}

	envelope := artifactEnvelope{
		SchemaVersion: artifactSchemaVersion,
		SavedAt:       time.Now().UTC(),
		Artifact:      raw,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", name, err)
	}

	path := s.layout.ModelPath(name)
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	slog.Info("Saved model artifact", "name", name, "path", path, "bytes", len(data))
	s.commit(ctx, path, "Update model "+name)

	return nil
}

// LoadArtifact reads a fitted model component back. A missing file means the
// model has not been trained; a file that does not decode means the artifact
// is corrupt. Both fail loudly.
func (s *FileStore) LoadArtifact(_ context.Context, name string, artifact any) error {
	path := s.layout.ModelPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: artifact %s (run train first)", common.ErrModelNotTrained, name)
		}
		return fmt.Errorf("failed to read artifact %s: %w", name, err)
	}

	var envelope artifactEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, path, err)
	}
	if envelope.SchemaVersion != artifactSchemaVersion {
		return fmt.Errorf("%w: %s has schema version %d, want %d",
			common.ErrCorruptArtifact, path, envelope.SchemaVersion, artifactSchemaVersion)
	}
	if err := json.Unmarshal(envelope.Artifact, artifact); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, path, err)
	}

	return nil
}
