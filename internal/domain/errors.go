package domain

import "fmt"

// ClassificationError indica que un registro no encaja en ninguna de las
// cinco variantes conocidas. El registro queda fuera de la agregación, pero
// el error se propaga para que el dato malformado sea visible al operador.
type ClassificationError struct {
	RecordID string
	Tipo     string
}

func (e *ClassificationError) Error() string {
	if e.Tipo == "" {
		return fmt.Sprintf("registro %s sin tipo y sin campos de total diario", e.RecordID)
	}
	return fmt.Sprintf("registro %s con tipo desconocido %q", e.RecordID, e.Tipo)
}
