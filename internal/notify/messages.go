package notify

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Messages holds the canned texts shown after common operations.
type Messages struct {
	Saved         string
	BoardLoaded   string
	Imported      string
	Exported      string
	SettingsReset string
	Error         string
}

var catalog = map[language.Base]Messages{
	mustBase("en"): {
		Saved:         "Configuration saved",
		BoardLoaded:   "Board loaded",
		Imported:      "Backup imported",
		Exported:      "Backup exported",
		SettingsReset: "Settings reset to defaults",
		Error:         "Something went wrong",
	},
	mustBase("es"): {
		Saved:         "Configuración guardada",
		BoardLoaded:   "Tablero cargado",
		Imported:      "Copia de seguridad importada",
		Exported:      "Copia de seguridad exportada",
		SettingsReset: "Ajustes restablecidos",
		Error:         "Algo salió mal",
	},
}

// MessagesFromEnv picks texts for $LANG.
func MessagesFromEnv() Messages {
	return MessagesFor(os.Getenv("LANG"))
}

// MessagesFor picks texts for a POSIX locale or BCP 47 tag, falling back to English.
func MessagesFor(raw string) Messages {
	return catalog[resolveLocale(raw)]
}

func resolveLocale(raw string) language.Base {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")

	english := mustBase("en")
	tag, err := language.Parse(raw)
	if err != nil {
		return english
	}
	base, _ := tag.Base()
	if _, ok := catalog[base]; ok {
		return base
	}
	return english
}

func mustBase(code string) language.Base {
	return language.MustParseBase(code)
}
