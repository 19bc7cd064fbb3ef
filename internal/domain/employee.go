package domain

import "fmt"

// Employee identifica a una de las dos vendedoras fijas de la tienda.
type Employee string

const (
	EmployeeIngrid Employee = "Ingrid"
	EmployeeMarta  Employee = "Marta"
)

// Employees devuelve las empleadas en orden estable de presentación
func Employees() []Employee {
	return []Employee{EmployeeIngrid, EmployeeMarta}
}

// ParseEmployee valida el identificador de empleada recibido por la API
func ParseEmployee(s string) (Employee, error) {
	switch Employee(s) {
	case EmployeeIngrid:
		return EmployeeIngrid, nil
	case EmployeeMarta:
		return EmployeeMarta, nil
	}

	return "", fmt.Errorf("empleada desconocida: %q", s)
}
