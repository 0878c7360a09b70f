package translator

import (
	"strings"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "VARCHAR2 preserva comprimento",
			input:    "NOME VARCHAR2(50)",
			expected: "NOME VARCHAR(50)",
		},
		{
			name:     "NVARCHAR2 perde o prefixo N",
			input:    "NOME NVARCHAR2(100)",
			expected: "NOME VARCHAR(100)",
		},
		{
			name:     "VARCHAR2 com qualificador BYTE",
			input:    "NOME VARCHAR2(30 BYTE)",
			expected: "NOME VARCHAR(30)",
		},
		{
			name:     "CHAR com qualificador CHAR",
			input:    "UF CHAR(2 CHAR)",
			expected: "UF CHAR(2)",
		},
		{
			name:     "NCHAR preserva comprimento",
			input:    "CODIGO NCHAR(5)",
			expected: "CODIGO CHAR(5)",
		},
		{
			name:     "CLOB vira String",
			input:    "TEXTO CLOB",
			expected: "TEXTO String",
		},
		{
			name:     "NCLOB vira String",
			input:    "TEXTO NCLOB",
			expected: "TEXTO String",
		},
		{
			name:     "BLOB vira String",
			input:    "FOTO BLOB",
			expected: "FOTO String",
		},
		{
			name:     "LONG RAW vira String",
			input:    "DADOS LONG RAW",
			expected: "DADOS String",
		},
		{
			name:     "RAW com comprimento vira String",
			input:    "HASH RAW(32)",
			expected: "HASH String",
		},
		{
			name:     "BINARY_FLOAT vira Float32",
			input:    "PRECO BINARY_FLOAT",
			expected: "PRECO Float32",
		},
		{
			name:     "BINARY_DOUBLE vira Float64",
			input:    "PRECO BINARY_DOUBLE",
			expected: "PRECO Float64",
		},
		{
			name:     "NUMBER com precisão e escala",
			input:    "VALOR NUMBER(10,2)",
			expected: "VALOR Decimal(10, 2)",
		},
		{
			name:     "NUMBER só com precisão",
			input:    "QTD NUMBER(5)",
			expected: "QTD Decimal(5)",
		},
		{
			name:     "NUMBER sem precisão vira Int64",
			input:    "ID NUMBER",
			expected: "ID Int64",
		},
		{
			name:     "DATE DEFAULT SYSDATE vira today",
			input:    "CRIADO_EM DATE DEFAULT SYSDATE",
			expected: "CRIADO_EM DATE DEFAULT today()",
		},
		{
			name:     "SYSTIMESTAMP vira now",
			input:    "ATUALIZADO_EM TIMESTAMP DEFAULT SYSTIMESTAMP",
			expected: "ATUALIZADO_EM DateTime DEFAULT now()",
		},
		{
			name:     "TIMESTAMP com precisão e fuso",
			input:    "EVENTO TIMESTAMP(6) WITH TIME ZONE",
			expected: "EVENTO DateTime64(6)",
		},
		{
			name:     "TIMESTAMP com fuso local",
			input:    "EVENTO TIMESTAMP WITH LOCAL TIME ZONE",
			expected: "EVENTO DateTime",
		},
		{
			name:     "TIMESTAMP com precisão",
			input:    "EVENTO TIMESTAMP(3)",
			expected: "EVENTO DateTime64(3)",
		},
		{
			name:     "TIMESTAMP simples",
			input:    "EVENTO TIMESTAMP",
			expected: "EVENTO DateTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.input
			for _, rule := range rules {
				out, _ = rule.Apply(out)
			}
			if out != tt.expected {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, out, tt.expected)
			}
		})
	}
}

// Os tipos de destino nunca casam com os padrões de origem, portanto
// reaplicar a tabela inteira não altera o resultado
func TestDefaultRulesIdempotent(t *testing.T) {
	rules := DefaultRules()
	inputs := []string{
		"VALOR NUMBER(10,2), QTD NUMBER(5), ID NUMBER",
		"NOME VARCHAR2(50), TEXTO CLOB, EVENTO TIMESTAMP(6)",
		"CRIADO DATE DEFAULT SYSDATE, HASH RAW(32)",
	}

	for _, input := range inputs {
		once := input
		for _, rule := range rules {
			once, _ = rule.Apply(once)
		}
		twice := once
		for _, rule := range rules {
			twice, _ = rule.Apply(twice)
		}
		if once != twice {
			t.Errorf("reaplicação alterou o resultado:\nprimeira: %q\nsegunda: %q", once, twice)
		}
	}
}

func TestCompileOverrides(t *testing.T) {
	rules := CompileOverrides(map[string]TypeMapping{
		"XMLTYPE": {Target: "String", Description: "XML armazenado como texto"},
		"RAW":     {Target: "FixedString({n})"},
	})

	if len(rules) != 2 {
		t.Fatalf("CompileOverrides retornou %d regras, want 2", len(rules))
	}

	// Ordenação determinística por token
	if rules[0].Note == "" || !strings.Contains(rules[1].Note, "XML") {
		t.Errorf("ordem inesperada das regras: %q, %q", rules[0].Note, rules[1].Note)
	}

	out := "DADOS XMLTYPE(2000), HASH RAW(16), CHAVE RAW"
	for _, rule := range rules {
		out, _ = rule.Apply(out)
	}

	// Destino sem placeholder descarta o sufixo capturado
	if !strings.Contains(out, "DADOS String,") {
		t.Errorf("override de XMLTYPE não aplicado: %q", out)
	}
	if !strings.Contains(out, "HASH FixedString(16)") {
		t.Errorf("placeholder de comprimento não reinserido: %q", out)
	}
	if !strings.Contains(out, "CHAVE FixedString") || strings.Contains(out, "CHAVE FixedString(") {
		t.Errorf("override sem sufixo deveria remover o placeholder: %q", out)
	}
}

func TestCompileOverridesEmpty(t *testing.T) {
	if rules := CompileOverrides(nil); rules != nil {
		t.Errorf("CompileOverrides(nil) = %v, want nil", rules)
	}
}
