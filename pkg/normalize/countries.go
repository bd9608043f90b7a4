package normalize

// countryCodes maps lowercase, accent-stripped country labels (French and
// English names plus common abbreviations) to ISO 3166-1 alpha-2 codes.
// Read-only after init; never mutated mid-run.
var countryCodes = map[string]string{
	"france": "FR", "fr": "FR",
	"allemagne": "DE", "germany": "DE", "de": "DE",
	"italie": "IT", "italy": "IT", "it": "IT",
	"espagne": "ES", "spain": "ES", "es": "ES",
	"belgique": "BE", "belgium": "BE", "be": "BE",
	"suisse": "CH", "switzerland": "CH", "ch": "CH",
	"luxembourg": "LU", "lu": "LU",
	"pays-bas": "NL", "netherlands": "NL", "nl": "NL", "hollande": "NL",
	"royaume-uni": "GB", "united kingdom": "GB", "uk": "GB", "gb": "GB",
	"angleterre": "GB", "england": "GB",
	"etats-unis": "US", "united states": "US", "usa": "US", "us": "US",
	"portugal": "PT", "pt": "PT",
	"autriche": "AT", "austria": "AT", "at": "AT",
	"suede": "SE", "sweden": "SE", "se": "SE",
	"danemark": "DK", "denmark": "DK", "dk": "DK",
	"norvege": "NO", "norway": "NO", "no": "NO",
	"finlande": "FI", "finland": "FI", "fi": "FI",
	"pologne": "PL", "poland": "PL", "pl": "PL",
	"republique tcheque": "CZ", "czech republic": "CZ", "czechia": "CZ", "cz": "CZ",
	"irlande": "IE", "ireland": "IE", "ie": "IE",
	"grece": "GR", "greece": "GR", "gr": "GR",
	"roumanie": "RO", "romania": "RO", "ro": "RO",
	"hongrie": "HU", "hungary": "HU", "hu": "HU",
	"japon": "JP", "japan": "JP", "jp": "JP",
	"chine": "CN", "china": "CN", "cn": "CN",
	"canada": "CA", "ca": "CA",
	"australie": "AU", "australia": "AU", "au": "AU",
	"singapour": "SG", "singapore": "SG", "sg": "SG",
	"emirats arabes unis": "AE", "uae": "AE", "ae": "AE",
	"monaco": "MC", "mc": "MC",
	"liechtenstein": "LI", "li": "LI",
	"andorre": "AD", "andorra": "AD", "ad": "AD",
	"ile maurice": "MU", "mauritius": "MU", "mu": "MU",
	"maroc": "MA", "morocco": "MA", "ma": "MA",
}
