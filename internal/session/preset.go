package session

import (
	"encoding/csv"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

// builtinPresets are the limiter definitions available to limit-preset out
// of the box, keyed by preset name, as [type, default, variants, pattern]
// tokens.
var builtinPresets = map[string][]string{
	"text":   {"text", "", "", ""},
	"number": {"number", "", "", ""},
	"float":  {"text", "0.0", "", `^[+-]?([0-9]*[.])?[0-9]+$`},
	"email":  {"text", "johndoe@mail.com", "", `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`},
	"date":   {"text", "2000-01-01", "", `^[12]\d{3}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`},
	"time":   {"text", "00:00:00", "", `^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`},
	"url":    {"text", "http://john.doe", "", `^https?://\S+$`},
}

// loadPresets returns the built-in presets merged with the user preset
// file, user entries winning. A missing file is fine; a malformed entry is
// skipped with a warning so one bad line cannot take the presets down.
func loadPresets(path string) map[string]types.ValueLimiter {
	presets := make(map[string]types.ValueLimiter, len(builtinPresets))
	for name, tokens := range builtinPresets {
		lim, err := types.LimiterFromTokens(tokens)
		if err != nil {
			// Built-ins are fixed above; a failure here is a programming error.
			panic("builtin preset " + name + ": " + err.Error())
		}
		presets[name] = *lim
	}
	if path == "" {
		return presets
	}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("preset file %s: %v", path, err)
		}
		return presets
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		log.Warnf("preset file %s: %v", path, err)
		return presets
	}
	for n, record := range records {
		if n == 0 && isPresetHeader(record) {
			continue
		}
		if len(record) != 5 {
			log.Warnf("preset file %s record %d: want 5 fields, got %d", path, n+1, len(record))
			continue
		}
		lim, err := types.LimiterFromTokens(record[1:])
		if err != nil {
			log.Warnf("preset file %s record %d: %v", path, n+1, err)
			continue
		}
		presets[record[0]] = *lim
	}
	return presets
}

func isPresetHeader(record []string) bool {
	return len(record) > 0 && record[0] == "name"
}

// PresetNames returns the available preset names for display.
func (s *Session) PresetNames() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	return names
}

// DefaultPresetFileContent is the starter presets.csv written by init:
// header only, ready for user entries.
const DefaultPresetFileContent = "name,type,default,variants,pattern\n"
