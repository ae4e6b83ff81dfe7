package normalizing

import (
	"fmt"
	"strings"
)

// Field é o nome canônico de uma coluna de entrada
type Field string

const (
	FieldIdentifier      Field = "identifier"
	FieldName            Field = "name"
	FieldPrice           Field = "price"
	FieldCost            Field = "cost"
	FieldMonthlyVelocity Field = "monthly_velocity"
	FieldReturnRate      Field = "return_rate_pct"
	FieldReferralFee     Field = "referral_fee_pct"
	FieldFBAFee          Field = "fba_fee_pct"
	FieldVAT             Field = "vat_pct"
	FieldShippingCost    Field = "shipping_cost_per_unit"
	FieldInitialOrderQty Field = "initial_order_qty"
	FieldInitialCash     Field = "initial_cash"
	FieldCompetitorCount Field = "competitor_count"
	FieldAverageRating   Field = "average_rating"
	FieldCategory        Field = "category"
)

// FieldSpec descreve uma coluna canônica: aliases aceitos, obrigatoriedade e regra de validação.
// Rule usa a sintaxe de tags do go-playground/validator.
type FieldSpec struct {
	Field    Field
	Aliases  []string
	Required bool
	Rule     string
	Message  string // Mensagem quando a regra falha
}

// FieldTable é a tabela explícita de mapeamento de cabeçalhos.
// Aliases são comparados após canonicalKey; a ordem define a prioridade.
// Todo campo numérico tem teto: os produtos das métricas precisam continuar finitos.
var FieldTable = []FieldSpec{
	{
		Field:    FieldIdentifier,
		Aliases:  []string{"identifier", "asin", "product_asin", "product_id", "id"},
		Required: true,
		Rule:     "len=10",
		Message:  "o identificador deve ter exatamente 10 caracteres",
	},
	{
		Field:    FieldName,
		Aliases:  []string{"name", "product_name", "title", "product_title", "produktname", "nome"},
		Required: true,
		Rule:     "min=1,max=200",
		Message:  "o nome deve ter entre 1 e 200 caracteres",
	},
	{
		Field:    FieldPrice,
		Aliases:  []string{"price", "selling_price", "sale_price", "price_eur", "verkaufspreis", "preco"},
		Required: true,
		Rule:     "gte=0.01,lte=1000000",
		Message:  "o preço deve estar entre 0.01 e 1000000",
	},
	{
		Field:    FieldCost,
		Aliases:  []string{"cost", "cost_per_unit", "unit_cost", "cogs", "einkaufspreis", "custo"},
		Required: true,
		Rule:     "gte=0.01,lte=1000000",
		Message:  "o custo deve estar entre 0.01 e 1000000",
	},
	{
		Field:    FieldMonthlyVelocity,
		Aliases:  []string{"monthly_velocity", "velocity", "monthly_sales", "sales_per_month", "units_per_month", "monthly_units"},
		Required: true,
		Rule:     "gte=0,lte=10000000",
		Message:  "a velocidade mensal deve estar entre 0 e 10000000",
	},
	{
		Field:   FieldReturnRate,
		Aliases: []string{"return_rate_pct", "return_rate", "returns_pct", "returns", "retourenquote"},
		Rule:    "gte=0,lte=100",
		Message: "a taxa de devolução deve estar entre 0 e 100",
	},
	{
		Field:   FieldReferralFee,
		Aliases: []string{"referral_fee_pct", "referral_fee", "amazon_fee", "commission"},
		Rule:    "gte=0,lte=100",
		Message: "a taxa de comissão deve estar entre 0 e 100",
	},
	{
		Field:   FieldFBAFee,
		Aliases: []string{"fba_fee_pct", "fba_fee", "fulfillment_fee"},
		Rule:    "gte=0,lte=100",
		Message: "a taxa FBA deve estar entre 0 e 100",
	},
	{
		Field:   FieldVAT,
		Aliases: []string{"vat_pct", "vat", "vat_rate", "tax_rate", "mwst"},
		Rule:    "gte=0,lte=100",
		Message: "o IVA deve estar entre 0 e 100",
	},
	{
		Field:   FieldShippingCost,
		Aliases: []string{"shipping_cost_per_unit", "shipping_cost", "shipping_per_unit", "shipping", "versandkosten"},
		Rule:    "gte=0,lte=1000000",
		Message: "o frete deve estar entre 0 e 1000000",
	},
	{
		Field:   FieldInitialOrderQty,
		Aliases: []string{"initial_order_qty", "initial_order", "initial_quantity", "order_qty", "first_order"},
		Rule:    "gte=0,lte=100000000",
		Message: "o pedido inicial deve estar entre 0 e 100000000",
	},
	{
		Field:   FieldInitialCash,
		Aliases: []string{"initial_cash", "starting_cash", "cash", "budget", "startkapital"},
		Rule:    "gte=0,lte=1000000000000",
		Message: "o caixa inicial deve estar entre 0 e 1000000000000",
	},
	{
		Field:   FieldCompetitorCount,
		Aliases: []string{"competitor_count", "competitors", "seller_count", "number_of_sellers", "sellers"},
		Rule:    "gte=0,lte=100000",
		Message: "o número de concorrentes deve estar entre 0 e 100000",
	},
	{
		Field:   FieldAverageRating,
		Aliases: []string{"average_rating", "rating", "avg_rating", "stars"},
		Rule:    "gte=0,lte=5",
		Message: "a avaliação deve estar entre 0 e 5",
	},
	{
		Field:   FieldCategory,
		Aliases: []string{"category", "product_category", "kategorie", "categoria"},
		Rule:    "max=100",
		Message: "a categoria deve ter no máximo 100 caracteres",
	},
}

// aliasIndex mapeia cada alias para seu campo canônico
var aliasIndex = buildAliasIndex(FieldTable)

func buildAliasIndex(table []FieldSpec) map[string]Field {
	index := make(map[string]Field)
	for _, spec := range table {
		for _, alias := range spec.Aliases {
			key := canonicalKey(alias)
			if owner, exists := index[key]; exists {
				panic(fmt.Sprintf("alias %q duplicado entre %s e %s", alias, owner, spec.Field))
			}
			index[key] = spec.Field
		}
	}
	return index
}

// FieldForHeader retorna o campo canônico de um cabeçalho, se conhecido
func FieldForHeader(header string) (Field, bool) {
	field, ok := aliasIndex[canonicalKey(header)]
	return field, ok
}

// canonicalKey aplica caixa baixa, remove espaços das pontas e troca '-' e ' ' por '_'
func canonicalKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}
