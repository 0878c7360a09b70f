package models

import "fmt"

// ObjectKind representa o tipo de um objeto de schema
type ObjectKind string

const (
	ObjectKindTable     ObjectKind = "table"
	ObjectKindView      ObjectKind = "view"
	ObjectKindSequence  ObjectKind = "sequence"
	ObjectKindProcedure ObjectKind = "procedure"
	ObjectKindFunction  ObjectKind = "function"
	ObjectKindOther     ObjectKind = "other"
)

// SchemaObject representa um objeto extraído do banco de origem com seu DDL.
// Imutável após a extração; a identidade é (kind, schema, name).
type SchemaObject struct {
	Name      string     `json:"name"`
	Kind      ObjectKind `json:"kind"`
	Schema    string     `json:"schema,omitempty"`
	SourceDDL string     `json:"source_ddl"`
}

// Key retorna a chave de identidade do objeto
func (o SchemaObject) Key() string {
	return fmt.Sprintf("%s|%s|%s", o.Kind, o.Schema, o.Name)
}

// TranslatedObject representa um objeto após a tradução para o dialeto de destino.
// SourceDDL é reanexado após a tradução apenas para exibição.
type TranslatedObject struct {
	Name      string     `json:"name"`
	Kind      ObjectKind `json:"kind"`
	Schema    string     `json:"schema,omitempty"`
	TargetSQL string     `json:"target_sql"`
	SourceDDL string     `json:"source_ddl,omitempty"`
	Notes     []string   `json:"notes,omitempty"`
}

// TranslationResult representa o resultado de uma tradução (serviço externo ou fallback)
type TranslationResult struct {
	Objects  []TranslatedObject `json:"objects"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ExtractionResult agrupa os objetos extraídos por tipo, preservando a ordem de extração
type ExtractionResult struct {
	Sequences []SchemaObject `json:"sequences"`
	Tables    []SchemaObject `json:"tables"`
	Views     []SchemaObject `json:"views"`
}

// Total retorna o número total de objetos extraídos
func (r *ExtractionResult) Total() int {
	return len(r.Sequences) + len(r.Tables) + len(r.Views)
}

// Flatten retorna todos os objetos em uma lista única na ordem de criação:
// sequences antes de tables, tables antes de views, para que objetos
// dependentes sejam criados depois de suas dependências.
func (r *ExtractionResult) Flatten() []SchemaObject {
	out := make([]SchemaObject, 0, r.Total())
	out = append(out, r.Sequences...)
	out = append(out, r.Tables...)
	out = append(out, r.Views...)
	return out
}
