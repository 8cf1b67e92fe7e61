package locale

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key
const (
	MsgYes = "yes"
	MsgNo  = "no"

	MsgRequired      = "%s: value is required"
	MsgNotNumber     = "%s: not a number"
	MsgNotPositive   = "%s: must be positive"
	MsgNotBoolean    = "%s: not a boolean value"
	MsgNotScalar     = "%s: not a scalar value"
	MsgTooLong       = "%s: exceeds %d characters"
	MsgNotEmail      = "%s: not a valid e-mail address"
	MsgNotURL        = "%s: not a valid URL"
	MsgNotDate       = "%s: not a valid date"
	MsgNotOption     = "%s: not a valid option"
	MsgUploadFailed  = "%s: upload failed"
	MsgFileTooLarge  = "%s: file too large"
	MsgInvalidFormat = "%s: invalid format"
	MsgNotPct100     = "%s: must be between 0 and 100"
)

// Translations maps a message key to its translation per language
type Translations map[string]map[language.Tag]string

var builtin = Translations{
	MsgYes: {language.French: "oui", language.German: "ja", language.Czech: "ano"},
	MsgNo:  {language.French: "non", language.German: "nein", language.Czech: "ne"},
	MsgRequired: {
		language.French: "%s : valeur obligatoire",
		language.German: "%s: Wert ist erforderlich",
		language.Czech:  "%s: hodnota je povinná",
	},
	MsgNotNumber: {
		language.French: "%s : n'est pas un nombre",
		language.German: "%s: keine Zahl",
		language.Czech:  "%s: není číslo",
	},
	MsgNotPositive: {
		language.French: "%s : doit être positif",
		language.German: "%s: muss positiv sein",
		language.Czech:  "%s: musí být kladné",
	},
	MsgNotBoolean: {
		language.French: "%s : n'est pas une valeur booléenne",
		language.German: "%s: kein boolescher Wert",
		language.Czech:  "%s: není logická hodnota",
	},
	MsgNotScalar: {
		language.French: "%s : n'est pas une valeur scalaire",
		language.German: "%s: kein skalarer Wert",
		language.Czech:  "%s: není skalární hodnota",
	},
	MsgTooLong: {
		language.French: "%s : dépasse %d caractères",
		language.German: "%s: überschreitet %d Zeichen",
		language.Czech:  "%s: přesahuje %d znaků",
	},
	MsgNotEmail: {
		language.French: "%s : adresse e-mail invalide",
		language.German: "%s: keine gültige E-Mail-Adresse",
		language.Czech:  "%s: neplatná e-mailová adresa",
	},
	MsgNotURL: {
		language.French: "%s : URL invalide",
		language.German: "%s: keine gültige URL",
		language.Czech:  "%s: neplatná URL",
	},
	MsgNotDate: {
		language.French: "%s : date invalide",
		language.German: "%s: kein gültiges Datum",
		language.Czech:  "%s: neplatné datum",
	},
	MsgNotOption: {
		language.French: "%s : option invalide",
		language.German: "%s: keine gültige Option",
		language.Czech:  "%s: neplatná volba",
	},
	MsgUploadFailed: {
		language.French: "%s : échec du téléversement",
		language.German: "%s: Hochladen fehlgeschlagen",
		language.Czech:  "%s: nahrání selhalo",
	},
	MsgFileTooLarge: {
		language.French: "%s : fichier trop volumineux",
		language.German: "%s: Datei zu groß",
		language.Czech:  "%s: soubor je příliš velký",
	},
	MsgInvalidFormat: {
		language.French: "%s : format invalide",
		language.German: "%s: ungültiges Format",
		language.Czech:  "%s: neplatný formát",
	},
	MsgNotPct100: {
		language.French: "%s : doit être compris entre 0 et 100",
		language.German: "%s: muss zwischen 0 und 100 liegen",
		language.Czech:  "%s: musí být mezi 0 a 100",
	},
}

var (
	catalogOnce sync.Once
	ctlg        catalog.Catalog
)

// Catalog returns the catalog holding the built-in translations
func Catalog() catalog.Catalog {
	catalogOnce.Do(func() {
		ctlg = CatalogFromTranslations(builtin)
	})
	return ctlg
}

// CatalogFromTranslations builds a message catalog from t
func CatalogFromTranslations(t Translations) catalog.Catalog {
	b := catalog.NewBuilder()
	for key, byLang := range t {
		for lang, translation := range byLang {
			if err := b.SetString(lang, key, translation); err != nil {
				panic(err)
			}
		}
	}
	return b
}
