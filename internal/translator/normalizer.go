package translator

import (
	"fmt"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// Normalize valida e normaliza a saída bruta do serviço de tradução antes
// que qualquer outro componente confie nela. É o único portão entre o
// conteúdo gerado (não confiável) e o resto do sistema: formas malformadas
// são rejeitadas com *ShapeError em vez de coagidas silenciosamente, exceto
// pelos preenchimentos de default listados abaixo.
//
// Preenchimentos permitidos: name/kind/schema ausentes vêm de def; na falta
// de ambos, name vira "object_{i+1}" e kind vira "table". Um campo warnings
// ausente vira lista vazia; um valor não-lista é convertido em lista de um
// elemento com sua representação textual.
func Normalize(raw any, def models.SchemaObject) (models.TranslationResult, error) {
	var result models.TranslationResult

	record, ok := raw.(map[string]any)
	if !ok {
		return result, &ShapeError{Reason: fmt.Sprintf("resultado não é um objeto estruturado (%T)", raw)}
	}

	rawObjects, ok := record["objects"]
	if !ok {
		return result, &ShapeError{Reason: "campo 'objects' ausente"}
	}

	list, ok := rawObjects.([]any)
	if !ok {
		return result, &ShapeError{Reason: fmt.Sprintf("campo 'objects' não é uma lista (%T)", rawObjects)}
	}

	result.Objects = make([]models.TranslatedObject, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return models.TranslationResult{}, &ShapeError{
				Reason: fmt.Sprintf("entrada %d de 'objects' não é um objeto estruturado (%T)", i, entry)}
		}

		targetSQL, ok := obj["target_sql"].(string)
		if !ok || targetSQL == "" {
			return models.TranslationResult{}, &ShapeError{
				Reason: fmt.Sprintf("entrada %d de 'objects' sem 'target_sql' textual", i)}
		}

		translated := models.TranslatedObject{
			Name:      stringField(obj, "name", def.Name),
			Schema:    stringField(obj, "schema", def.Schema),
			TargetSQL: targetSQL,
			Notes:     stringList(obj["notes"]),
		}

		kind := stringField(obj, "kind", string(def.Kind))
		if translated.Name == "" {
			translated.Name = fmt.Sprintf("object_%d", i+1)
		}
		if kind == "" {
			kind = string(models.ObjectKindTable)
		}
		translated.Kind = models.ObjectKind(kind)

		result.Objects = append(result.Objects, translated)
	}

	result.Warnings = coerceWarnings(record["warnings"])

	return result, nil
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprintf("%v", item))
		}
	}
	return out
}

// coerceWarnings garante que warnings seja sempre uma lista de strings
func coerceWarnings(v any) []string {
	switch w := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(w))
		for _, item := range w {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", w)}
	}
}
