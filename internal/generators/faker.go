package generators

import (
	"math/rand/v2"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// CountryLocales maps a country code to the locale gofakeit-backed
// name/place pools should bias toward. Spec section 4.3 describes
// this table as "a data table external to the core", received by the
// faker generator "as an injected dependency so it can be swapped or
// extended without a code change" (design note on locale resolution);
// it is a package variable rather than a literal embedded in
// generateFaker precisely so a caller can replace or extend it before
// calling Generate.
var CountryLocales = map[string]string{
	"US": "en", "GB": "en", "CA": "en", "AU": "en", "NZ": "en", "IE": "en",
	"FR": "fr", "BE": "fr", "CH": "fr",
	"DE": "de", "AT": "de",
	"ES": "es", "MX": "es", "AR": "es", "CO": "es",
	"IT": "it",
	"PT": "pt", "BR": "pt",
	"JP": "ja",
	"CN": "zh", "TW": "zh",
}

// localeNamePools holds the personal/place name vocabulary gofakeit
// itself does not localize (gofakeit has no per-locale data tables of
// its own); only the faker methods most visibly tied to a locale
// (name, first/last name, city) consult it. Every other method falls
// back to gofakeit's single built-in corpus regardless of locale.
var localeNamePools = map[string]struct {
	FirstNames []string
	LastNames  []string
	Cities     []string
}{
	"fr": {
		FirstNames: []string{"Camille", "Lucas", "Manon", "Hugo", "Chloé", "Louis"},
		LastNames:  []string{"Martin", "Bernard", "Dubois", "Petit", "Robert", "Richard"},
		Cities:     []string{"Lyon", "Marseille", "Toulouse", "Nantes", "Bordeaux"},
	},
	"de": {
		FirstNames: []string{"Lukas", "Anna", "Felix", "Mia", "Jonas", "Lena"},
		LastNames:  []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber"},
		Cities:     []string{"München", "Köln", "Frankfurt", "Stuttgart", "Leipzig"},
	},
	"es": {
		FirstNames: []string{"Mateo", "Sofía", "Santiago", "Valentina", "Diego"},
		LastNames:  []string{"García", "Martínez", "López", "Hernández", "González"},
		Cities:     []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Bilbao"},
	},
	"pt": {
		FirstNames: []string{"Miguel", "Sofia", "Rafael", "Beatriz", "Gabriel"},
		LastNames:  []string{"Silva", "Santos", "Oliveira", "Pereira", "Costa"},
		Cities:     []string{"Lisboa", "Porto", "Braga", "Coimbra", "Faro"},
	},
	"ja": {
		FirstNames: []string{"Haruto", "Yui", "Sota", "Hina", "Riku"},
		LastNames:  []string{"Sato", "Suzuki", "Takahashi", "Tanaka", "Watanabe"},
		Cities:     []string{"Osaka", "Yokohama", "Nagoya", "Sapporo", "Kobe"},
	},
	"zh": {
		FirstNames: []string{"Wei", "Fang", "Jun", "Mei", "Lei"},
		LastNames:  []string{"Wang", "Li", "Zhang", "Liu", "Chen"},
		Cities:     []string{"Shanghai", "Shenzhen", "Guangzhou", "Chengdu", "Wuhan"},
	},
}

// generateFaker delegates each row to a named gofakeit method, wrapping
// gofakeit.Faker the way a faker-backed generator usually does, but
// re-seeded per row from the column's own *rand.Rand rather than a
// single process-wide instance, so that faker draws stay reproducible
// per (table, column, row). An optional locale or locale_from resolves
// a per-row locale before the method runs (spec section 4.3's faker
// row and design note on locale resolution).
func generateFaker(params map[string]interface{}, rowCount int, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	method, ok := toString(params["method"])
	if !ok || method == "" {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "faker", Detail: "method is required"}
	}

	fn, ok := fakerMethods[method]
	if !ok {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "faker", Detail: "unknown faker method: " + method}
	}

	locales, err := resolveFakerLocales(params, rowCount, ctx)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		faker := gofakeit.New(int64(rng.Uint64()))
		locale := "en"
		if locales != nil {
			locale = locales[i]
		}
		values[i] = fn(faker, locale)
	}
	return values, nil
}

// resolveFakerLocales returns one resolved locale per row from the
// "locale" (fixed) or "locale_from" (per-row sibling column) param, or
// nil if neither was declared. A value is resolved through
// CountryLocales when it matches a known country code; otherwise it is
// treated as an already-resolved locale tag.
func resolveFakerLocales(params map[string]interface{}, rowCount int, ctx gencontext.Context) ([]string, error) {
	if colName, ok := toString(params["locale_from"]); ok && colName != "" {
		tbl, ok := ctx.Tables.ByName(ctx.Node.ID)
		if !ok {
			return nil, &GeneratorError{Kind: ReferenceUnresolved, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "faker", Detail: "locale_from requires the sibling column to already be generated"}
		}
		col, ok := tbl.ColumnByName(colName)
		if !ok {
			return nil, &GeneratorError{Kind: ReferenceUnresolved, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "faker", Detail: "locale_from column not found: " + colName}
		}
		locales := make([]string, rowCount)
		for i := 0; i < rowCount; i++ {
			code, _ := toString(col.Values[i])
			locales[i] = resolveLocale(code)
		}
		return locales, nil
	}

	if locale, ok := toString(params["locale"]); ok && locale != "" {
		fixed := resolveLocale(locale)
		locales := make([]string, rowCount)
		for i := range locales {
			locales[i] = fixed
		}
		return locales, nil
	}

	return nil, nil
}

func resolveLocale(code string) string {
	if loc, ok := CountryLocales[strings.ToUpper(code)]; ok {
		return loc
	}
	return code
}

func localizedFirstName(f *gofakeit.Faker, locale string) string {
	pool, ok := localeNamePools[locale]
	if !ok || len(pool.FirstNames) == 0 {
		return f.FirstName()
	}
	return pool.FirstNames[f.Number(0, len(pool.FirstNames)-1)]
}

func localizedLastName(f *gofakeit.Faker, locale string) string {
	pool, ok := localeNamePools[locale]
	if !ok || len(pool.LastNames) == 0 {
		return f.LastName()
	}
	return pool.LastNames[f.Number(0, len(pool.LastNames)-1)]
}

func localizedName(f *gofakeit.Faker, locale string) string {
	return localizedFirstName(f, locale) + " " + localizedLastName(f, locale)
}

func localizedCity(f *gofakeit.Faker, locale string) string {
	pool, ok := localeNamePools[locale]
	if !ok || len(pool.Cities) == 0 {
		return f.City()
	}
	return pool.Cities[f.Number(0, len(pool.Cities)-1)]
}

var fakerMethods = map[string]func(*gofakeit.Faker, string) interface{}{
	"name":         func(f *gofakeit.Faker, locale string) interface{} { return localizedName(f, locale) },
	"first_name":   func(f *gofakeit.Faker, locale string) interface{} { return localizedFirstName(f, locale) },
	"last_name":    func(f *gofakeit.Faker, locale string) interface{} { return localizedLastName(f, locale) },
	"email":        func(f *gofakeit.Faker, _ string) interface{} { return f.Email() },
	"phone":        func(f *gofakeit.Faker, _ string) interface{} { return f.Phone() },
	"address":      func(f *gofakeit.Faker, _ string) interface{} { return f.Address().Address },
	"city":         func(f *gofakeit.Faker, locale string) interface{} { return localizedCity(f, locale) },
	"state":        func(f *gofakeit.Faker, _ string) interface{} { return f.State() },
	"country":      func(f *gofakeit.Faker, _ string) interface{} { return f.Country() },
	"company":      func(f *gofakeit.Faker, _ string) interface{} { return f.Company() },
	"job_title":    func(f *gofakeit.Faker, _ string) interface{} { return f.JobTitle() },
	"username":     func(f *gofakeit.Faker, _ string) interface{} { return f.Username() },
	"url":          func(f *gofakeit.Faker, _ string) interface{} { return f.URL() },
	"sentence":     func(f *gofakeit.Faker, _ string) interface{} { return f.Sentence(10) },
	"paragraph":    func(f *gofakeit.Faker, _ string) interface{} { return f.Paragraph(3, 5, 10, " ") },
	"product_name": func(f *gofakeit.Faker, _ string) interface{} { return f.ProductName() },
	"credit_card":  func(f *gofakeit.Faker, _ string) interface{} { return f.CreditCardNumber(nil) },
	"uuid":         func(f *gofakeit.Faker, _ string) interface{} { return f.UUID() },
	"ipv4":         func(f *gofakeit.Faker, _ string) interface{} { return f.IPv4Address() },
	"color":        func(f *gofakeit.Faker, _ string) interface{} { return f.Color() },
}
