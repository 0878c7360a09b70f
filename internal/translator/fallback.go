package translator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/utils"
)

// Dialetos com caminho de tradução determinístico completo
const (
	DialectOracle     = "oracle"
	DialectClickHouse = "clickhouse"
)

var (
	createHeaderRe = regexp.MustCompile(
		`(?i)(CREATE\s+(?:OR\s+REPLACE\s+)?(?:TABLE|VIEW|SEQUENCE)\s+)"([^"]+)"\s*\.\s*"([^"]+)"`)
	quotedIdentRe   = regexp.MustCompile(`"([^"]+)"`)
	backtickNameRe  = regexp.MustCompile("(?i)CREATE\\s+(?:OR\\s+REPLACE\\s+)?TABLE\\s+`([^`]+)`")
	engineClauseRe  = regexp.MustCompile(`(?i)\bENGINE\s*=`)
	trailingProbeRe = regexp.MustCompile(`(?i)\b(ORDER\s+BY|PARTITION\s+BY|PRIMARY\s+KEY|SETTINGS)\b`)
	checkItemRe     = regexp.MustCompile(`(?i)^\s*(?:CONSTRAINT\s+\S+\s+)?CHECK\s*\(`)
	uniqueItemRe    = regexp.MustCompile(`(?i)^\s*(?:CONSTRAINT\s+\S+\s+)?UNIQUE\s*\(`)

	// Atributos físicos do Oracle que não existem no destino
	storageClauseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+SEGMENT\s+CREATION\s+(?:IMMEDIATE|DEFERRED)`),
		regexp.MustCompile(`(?i)\s+PCTFREE\s+\d+`),
		regexp.MustCompile(`(?i)\s+PCTUSED\s+\d+`),
		regexp.MustCompile(`(?i)\s+INITRANS\s+\d+`),
		regexp.MustCompile(`(?i)\s+MAXTRANS\s+\d+`),
		regexp.MustCompile(`(?i)\s+STORAGE\s*\([^)]*\)`),
		regexp.MustCompile("(?i)\\s+TABLESPACE\\s+(?:`[^`]+`|\"[^\"]+\"|\\w+)"),
		regexp.MustCompile(`(?i)\s+NOCOMPRESS\b`),
		regexp.MustCompile(`(?i)\s+COMPRESS\b`),
		regexp.MustCompile(`(?i)\s+NOLOGGING\b`),
		regexp.MustCompile(`(?i)\s+LOGGING\b`),
		regexp.MustCompile(`(?i)\s+ENABLE\b`),
		regexp.MustCompile(`(?i)\s+NOVALIDATE\b`),
	}
)

// FallbackTranslator é o tradutor determinístico baseado em regras, usado
// quando o serviço externo está indisponível ou devolve saída inutilizável.
// Não depende de nada externo e nunca falha para entrada estruturalmente
// válida. O único par de dialetos com caminho completo é oracle->clickhouse;
// qualquer outro par devolve o DDL original intacto com uma nota, para nunca
// fabricar semântica silenciosamente.
type FallbackTranslator struct {
	rules []TypeRule
}

// NewFallbackTranslator cria o tradutor com a tabela padrão de regras.
// Overrides de implantação têm precedência sobre as regras padrão.
func NewFallbackTranslator(overrides map[string]TypeMapping) *FallbackTranslator {
	rules := CompileOverrides(overrides)
	rules = append(rules, DefaultRules()...)
	return &FallbackTranslator{rules: rules}
}

// Translate converte os objetos para o dialeto de destino
func (t *FallbackTranslator) Translate(objects []models.SchemaObject, sourceDialect, targetDialect string) models.TranslationResult {
	result := models.TranslationResult{Objects: make([]models.TranslatedObject, 0, len(objects))}

	supported := strings.EqualFold(sourceDialect, DialectOracle) &&
		strings.EqualFold(targetDialect, DialectClickHouse)

	for _, obj := range objects {
		translated := models.TranslatedObject{
			Name:   obj.Name,
			Kind:   obj.Kind,
			Schema: obj.Schema,
		}

		switch {
		case strings.TrimSpace(obj.SourceDDL) == "":
			translated.TargetSQL = fmt.Sprintf("-- %s %s: DDL de origem indisponível", obj.Kind, obj.Name)
			translated.Notes = []string{"objeto sem DDL de origem: definição mínima gerada"}
		case !supported:
			translated.TargetSQL = obj.SourceDDL
			translated.Notes = []string{fmt.Sprintf(
				"par de dialetos %s->%s não suportado pelo tradutor determinístico; DDL original mantido",
				sourceDialect, targetDialect)}
		default:
			translated.TargetSQL, translated.Notes = t.translateOracle(obj)
		}

		result.Objects = append(result.Objects, translated)
	}

	return result
}

// translateOracle aplica a sequência completa de reescritas oracle->clickhouse
func (t *FallbackTranslator) translateOracle(obj models.SchemaObject) (string, []string) {
	ddl := obj.SourceDDL
	var notes []string

	ddl, requoted := requoteIdentifiers(ddl)
	if requoted {
		notes = append(notes, "identificadores requotados para crase")
	}

	ddl, stripped := stripStorageClauses(ddl)
	if stripped {
		notes = append(notes, "cláusulas de armazenamento Oracle removidas")
	}

	seen := make(map[string]bool)
	for _, rule := range t.rules {
		var changed bool
		ddl, changed = rule.Apply(ddl)
		if changed && !seen[rule.Note] {
			seen[rule.Note] = true
			notes = append(notes, rule.Note)
		}
	}

	if obj.Kind == models.ObjectKindTable {
		var alters []string
		var constraintNotes []string
		ddl, alters, constraintNotes = relocateConstraints(ddl, obj.Name)
		notes = append(notes, constraintNotes...)

		var engineAdded bool
		ddl, engineAdded = ensureEngineClause(ddl)
		if engineAdded {
			notes = append(notes, "cláusula ENGINE = MergeTree adicionada")
		}

		if len(alters) > 0 {
			ddl = strings.TrimRight(ddl, " \t\n") + "\n\n" + strings.Join(alters, "\n")
		}
	}

	return ddl, notes
}

// requoteIdentifiers remove a qualificação de schema do cabeçalho CREATE e
// converte todos os identificadores entre aspas duplas para a convenção de
// crase do destino
func requoteIdentifiers(ddl string) (string, bool) {
	out := createHeaderRe.ReplaceAllString(ddl, "${1}\"${3}\"")
	out = quotedIdentRe.ReplaceAllString(out, "`${1}`")
	return out, out != ddl
}

func stripStorageClauses(ddl string) (string, bool) {
	out := ddl
	for _, re := range storageClauseRes {
		out = re.ReplaceAllString(out, "")
	}
	return out, out != ddl
}

// relocateConstraints remove as cláusulas CHECK e UNIQUE do corpo da tabela.
// Cada CHECK vira um ALTER TABLE ADD CONSTRAINT separado, com nome
// determinístico derivado do nome da tabela. UNIQUE é descartado por inteiro:
// o motor de destino não aplica unicidade, então reemitir a restrição daria
// uma falsa garantia.
func relocateConstraints(ddl, objectName string) (string, []string, []string) {
	open := strings.Index(ddl, "(")
	if open < 0 {
		return ddl, nil, nil
	}
	closing := matchingParen(ddl, open)
	if closing < 0 {
		return ddl, nil, nil
	}

	tableName := objectName
	if m := backtickNameRe.FindStringSubmatch(ddl); m != nil {
		tableName = m[1]
	}

	body := ddl[open+1 : closing]
	items := splitTopLevel(body)

	var kept []string
	var checks []string
	uniqueDropped := false

	for _, item := range items {
		switch {
		case checkItemRe.MatchString(item):
			if pred := innerParens(item); pred != "" {
				checks = append(checks, pred)
			}
		case uniqueItemRe.MatchString(item):
			uniqueDropped = true
		default:
			kept = append(kept, item)
		}
	}

	if len(checks) == 0 && !uniqueDropped {
		return ddl, nil, nil
	}

	rebuilt := ddl[:open+1] + strings.Join(kept, ",") + ddl[closing:]

	var alters []string
	base := utils.NormalizeIdentifier(tableName)
	for i, pred := range checks {
		alters = append(alters, fmt.Sprintf(
			"ALTER TABLE `%s` ADD CONSTRAINT `chk_%s_%d` CHECK (%s);",
			tableName, base, i+1, pred))
	}

	var notes []string
	if len(checks) > 0 {
		notes = append(notes, "restrições CHECK movidas para ALTER TABLE ADD CONSTRAINT")
	}
	if uniqueDropped {
		notes = append(notes, "restrições UNIQUE removidas: o motor de destino não as aplica")
	}

	return rebuilt, alters, notes
}

// ensureEngineClause garante que o CREATE TABLE carregue a cláusula de motor
// do destino, inserida antes de qualquer cláusula final de propriedades ou
// clusterização, ou antes do ponto e vírgula terminal
func ensureEngineClause(ddl string) (string, bool) {
	if engineClauseRe.MatchString(ddl) {
		return ddl, false
	}

	open := strings.Index(ddl, "(")
	closing := -1
	if open >= 0 {
		closing = matchingParen(ddl, open)
	}
	if closing < 0 {
		closing = len(ddl) - 1
	}

	tail := ddl[closing+1:]
	if loc := trailingProbeRe.FindStringIndex(tail); loc != nil {
		insertAt := closing + 1 + loc[0]
		return ddl[:insertAt] + "ENGINE = MergeTree\n" + ddl[insertAt:], true
	}

	trimmed := strings.TrimRight(ddl, " \t\n;")
	return trimmed + "\nENGINE = MergeTree\nORDER BY tuple();", true
}

// matchingParen retorna o índice do parêntese que fecha o aberto em open
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel divide o corpo da tabela em itens separados por vírgula,
// ignorando vírgulas dentro de parênteses
func splitTopLevel(body string) []string {
	var items []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, body[start:i])
				start = i + 1
			}
		}
	}
	items = append(items, body[start:])
	return items
}

// innerParens retorna o conteúdo do primeiro grupo de parênteses balanceado
func innerParens(s string) string {
	open := strings.Index(s, "(")
	if open < 0 {
		return ""
	}
	closing := matchingParen(s, open)
	if closing < 0 {
		return ""
	}
	return strings.TrimSpace(s[open+1 : closing])
}
