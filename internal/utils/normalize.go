package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var identifierRe = regexp.MustCompile(`[^a-z0-9]+`)

// RemoveDiacritics remove acentos e diacríticos de uma string
// Exemplo: "Situação" -> "Situacao"
func RemoveDiacritics(s string) string {
	if s == "" {
		return s
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, _ := transform.String(t, s)

	return normalized
}

// NormalizeIdentifier converte um nome de objeto em um identificador SQL
// seguro: minúsculas, sem acentos, caracteres inválidos viram underscore.
// Exemplo: "Funcionários-2024" -> "funcionarios_2024"
func NormalizeIdentifier(name string) string {
	normalized := strings.ToLower(RemoveDiacritics(name))
	normalized = identifierRe.ReplaceAllString(normalized, "_")
	return strings.Trim(normalized, "_")
}
