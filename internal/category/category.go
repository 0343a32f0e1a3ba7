// Package category assigns a best-effort category to a transaction
// description using case-insensitive keyword buckets. It is shared by
// every parsing strategy so the taxonomy evolves in one place.
package category

import "strings"

// Fixed category taxonomy. Unmatched descriptions fall back to Other.
const (
	Transport     = "Transport"
	Fuel          = "Fuel"
	Market        = "Market"
	Food          = "Food"
	Subscriptions = "Subscriptions"
	Health        = "Health"
	Other         = "Other"
)

type bucket struct {
	name     string
	keywords []string
}

// Keyword lists mix Portuguese and English merchant spellings as they
// appear on Brazilian card statements. First matching bucket wins.
var buckets = []bucket{
	{Fuel, []string{
		"posto", "combustivel", "combustível", "gasolina", "etanol",
		"shell", "ipiranga", "petrobras",
	}},
	{Transport, []string{
		"uber", "99app", "99 pop", "taxi", "táxi", "cabify", "buser",
		"estacionamento", "pedagio", "pedágio", "metro rio", "bilhete unico",
	}},
	{Market, []string{
		"supermercado", "mercado", "atacadao", "atacadão", "carrefour",
		"pao de acucar", "pão de açúcar", "assai", "hortifruti", "padaria",
		"sacolao", "mercearia",
	}},
	{Food, []string{
		"ifood", "restaurante", "lanchonete", "pizzaria", "hamburgueria",
		"burger", "mcdonald", "subway", "churrascaria", "cafeteria",
	}},
	{Subscriptions, []string{
		"netflix", "spotify", "amazon prime", "prime video", "disney",
		"hbo", "globoplay", "deezer", "youtube premium", "apple.com",
		"assinatura",
	}},
	{Health, []string{
		"farmacia", "farmácia", "drogaria", "drogasil", "pague menos",
		"hospital", "clinica", "clínica", "laboratorio", "laboratório",
		"consulta",
	}},
}

// Categorize returns the category for a description, or Other when no
// keyword matches.
func Categorize(description string) string {
	lower := strings.ToLower(description)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.name
			}
		}
	}
	return Other
}
