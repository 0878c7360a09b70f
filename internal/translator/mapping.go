package translator

import (
	"regexp"
	"sort"
	"strings"
)

// Categorias de reescrita, usadas nas notas informativas do fallback
const (
	CategoryCharacter = "tipos de caractere"
	CategoryLOB       = "tipos LOB"
	CategoryFloat     = "tipos de ponto flutuante"
	CategoryNumeric   = "tipos numéricos"
	CategoryDateTime  = "datas e horários"
	CategoryOverride  = "overrides de tipo"
)

// LengthPlaceholder é o token de substituição usado em overrides para
// reinserir o sufixo de comprimento/precisão capturado do tipo de origem.
// Exemplo: {"RAW": {"target": "FixedString({n})"}} converte RAW(16) em FixedString(16).
// Um override cujo destino não carrega o placeholder descarta o sufixo
// capturado: FLOAT(10) com destino "Float64" vira Float64, porque o tipo de
// destino não é parametrizável por comprimento.
const LengthPlaceholder = "{n}"

// TypeMapping é uma substituição de tipo configurável por implantação,
// carregada da variável TYPE_MAPPING_OVERRIDES (JSON token -> mapping)
type TypeMapping struct {
	Target      string `json:"target"`
	Description string `json:"description,omitempty"`
}

// TypeRule é uma regra de reescrita aplicada em ordem sobre o DDL.
// A precedência é a posição na lista: a primeira regra que casa um
// token vence, por isso as variantes mais específicas vêm antes
// (NUMBER(p,s) antes de NUMBER(p) antes de NUMBER).
type TypeRule struct {
	Category string
	Pattern  *regexp.Regexp
	Replace  string
	Note     string
}

// Apply aplica a regra ao DDL e informa se houve alteração
func (r TypeRule) Apply(ddl string) (string, bool) {
	if !r.Pattern.MatchString(ddl) {
		return ddl, false
	}

	var out string
	if strings.Contains(r.Replace, LengthPlaceholder) {
		out = r.Pattern.ReplaceAllStringFunc(ddl, func(m string) string {
			sub := r.Pattern.FindStringSubmatch(m)
			suffix := ""
			if len(sub) > 1 {
				suffix = strings.TrimSpace(sub[1])
			}
			if suffix == "" {
				// Sem sufixo capturado: remove o placeholder (e parênteses vazios)
				t := strings.ReplaceAll(r.Replace, "("+LengthPlaceholder+")", "")
				return strings.TrimSpace(strings.ReplaceAll(t, LengthPlaceholder, ""))
			}
			return strings.ReplaceAll(r.Replace, LengthPlaceholder, suffix)
		})
	} else {
		out = r.Pattern.ReplaceAllString(ddl, r.Replace)
	}

	return out, out != ddl
}

// DefaultRules retorna a tabela de mapeamento Oracle -> ClickHouse.
// A aplicação das regras é idempotente: os tipos de destino nunca casam
// com os padrões de origem.
func DefaultRules() []TypeRule {
	return []TypeRule{
		// Caracteres de comprimento variável: preserva o comprimento
		// declarado e remove o prefixo N de tipos wide-character
		{
			Category: CategoryCharacter,
			Pattern:  regexp.MustCompile(`(?i)\bN?VARCHAR2\s*\(\s*(\d+)(?:\s+(?:BYTE|CHAR))?\s*\)`),
			Replace:  `VARCHAR(${1})`,
			Note:     "VARCHAR2/NVARCHAR2 convertidos para VARCHAR preservando o comprimento",
		},
		{
			Category: CategoryCharacter,
			Pattern:  regexp.MustCompile(`(?i)\bNCHAR\s*\(\s*(\d+)\s*\)`),
			Replace:  `CHAR(${1})`,
			Note:     "NCHAR convertido para CHAR preservando o comprimento",
		},
		{
			Category: CategoryCharacter,
			Pattern:  regexp.MustCompile(`(?i)\bCHAR\s*\(\s*(\d+)\s+(?:BYTE|CHAR)\s*\)`),
			Replace:  `CHAR(${1})`,
			Note:     "qualificador BYTE/CHAR removido de CHAR",
		},
		// LOBs viram String sem comprimento
		{
			Category: CategoryLOB,
			Pattern:  regexp.MustCompile(`(?i)\bN?CLOB\b`),
			Replace:  `String`,
			Note:     "CLOB/NCLOB convertidos para String",
		},
		{
			Category: CategoryLOB,
			Pattern:  regexp.MustCompile(`(?i)\bBLOB\b`),
			Replace:  `String`,
			Note:     "BLOB convertido para String",
		},
		{
			Category: CategoryLOB,
			Pattern:  regexp.MustCompile(`(?i)\bLONG\s+RAW\b`),
			Replace:  `String`,
			Note:     "LONG RAW convertido para String",
		},
		{
			Category: CategoryLOB,
			Pattern:  regexp.MustCompile(`(?i)\bRAW\s*\(\s*\d+\s*\)`),
			Replace:  `String`,
			Note:     "RAW convertido para String",
		},
		// Ponto flutuante
		{
			Category: CategoryFloat,
			Pattern:  regexp.MustCompile(`(?i)\bBINARY_FLOAT\b`),
			Replace:  `Float32`,
			Note:     "BINARY_FLOAT convertido para Float32",
		},
		{
			Category: CategoryFloat,
			Pattern:  regexp.MustCompile(`(?i)\bBINARY_DOUBLE\b`),
			Replace:  `Float64`,
			Note:     "BINARY_DOUBLE convertido para Float64",
		},
		// Numéricos: NUMBER(p,s) -> Decimal(p, s), NUMBER(p) -> Decimal(p),
		// NUMBER sem precisão -> Int64
		{
			Category: CategoryNumeric,
			Pattern:  regexp.MustCompile(`(?i)\bNUMBER\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`),
			Replace:  `Decimal(${1}, ${2})`,
			Note:     "NUMBER(p,s) convertido para Decimal(p, s)",
		},
		{
			Category: CategoryNumeric,
			Pattern:  regexp.MustCompile(`(?i)\bNUMBER\s*\(\s*(\d+)\s*\)`),
			Replace:  `Decimal(${1})`,
			Note:     "NUMBER(p) convertido para Decimal(p)",
		},
		{
			Category: CategoryNumeric,
			Pattern:  regexp.MustCompile(`(?i)\bNUMBER\b`),
			Replace:  `Int64`,
			Note:     "NUMBER sem precisão convertido para Int64",
		},
		// Datas e horários: a regra de DEFAULT em coluna DATE precisa vir
		// antes da substituição genérica de SYSDATE
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bDATE\s+DEFAULT\s+SYSDATE\b`),
			Replace:  `DATE DEFAULT today()`,
			Note:     "DATE DEFAULT SYSDATE convertido para DATE DEFAULT today()",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bSYSTIMESTAMP\b`),
			Replace:  `now()`,
			Note:     "SYSTIMESTAMP convertido para now()",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bSYSDATE\b`),
			Replace:  `now()`,
			Note:     "SYSDATE convertido para now()",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bTIMESTAMP\s*\(\s*(\d+)\s*\)\s+WITH\s+(?:LOCAL\s+)?TIME\s+ZONE`),
			Replace:  `DateTime64(${1})`,
			Note:     "qualificador de fuso horário removido de TIMESTAMP",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bTIMESTAMP\s+WITH\s+(?:LOCAL\s+)?TIME\s+ZONE`),
			Replace:  `DateTime`,
			Note:     "qualificador de fuso horário removido de TIMESTAMP",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bTIMESTAMP\s*\(\s*(\d+)\s*\)`),
			Replace:  `DateTime64(${1})`,
			Note:     "TIMESTAMP(p) convertido para DateTime64(p)",
		},
		{
			Category: CategoryDateTime,
			Pattern:  regexp.MustCompile(`(?i)\bTIMESTAMP\b`),
			Replace:  `DateTime`,
			Note:     "TIMESTAMP convertido para DateTime",
		},
	}
}

// CompileOverrides converte os overrides configurados em regras de
// reescrita com prioridade sobre a tabela padrão. O padrão gerado casa o
// token com limite de palavra e captura um eventual sufixo de
// comprimento/precisão para reinserção via LengthPlaceholder.
func CompileOverrides(overrides map[string]TypeMapping) []TypeRule {
	if len(overrides) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(overrides))
	for token := range overrides {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	rules := make([]TypeRule, 0, len(tokens))
	for _, token := range tokens {
		m := overrides[token]
		note := m.Description
		if note == "" {
			note = token + " convertido para " + m.Target + " (override de implantação)"
		}
		rules = append(rules, TypeRule{
			Category: CategoryOverride,
			Pattern: regexp.MustCompile(
				`(?i)\b` + regexp.QuoteMeta(token) + `\b(?:\s*\(\s*([0-9]+(?:\s*,\s*[0-9]+)?)\s*\))?`),
			Replace: m.Target,
			Note:    note,
		})
	}
	return rules
}
