package configs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PolarWolf314/refuge/internal/utils"

	"github.com/BurntSushi/toml"
)

// SaveTOML encodes v and replaces filePath atomically with an owner-only file.
func SaveTOML(filePath string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filePath, err)
	}
	return utils.WriteFileAtomic(filePath, buf.Bytes(), 0600)
}

// LoadTOML decodes filePath into v. Keys that v has no field for are an
// error, so a misspelled setting is never silently ignored.
func LoadTOML(filePath string, v any) error {
	md, err := toml.DecodeFile(filePath, v)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", filePath, strings.Join(keys, ", "))
	}
	return nil
}
