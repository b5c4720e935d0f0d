package domain

import "time"

// EmployeeRecord — запись о сотруднике, созданная HRIS-агентом.
//
// Инвариант идемпотентности: одна запись на одно дело.
type EmployeeRecord struct {
	CaseID     string    `json:"caseId"`
	EmployeeID string    `json:"employeeId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkplaceAssignment — назначение рабочего места и комплекта оборудования.
//
// Инвариант идемпотентности: одно назначение на одно дело.
type WorkplaceAssignment struct {
	CaseID      string         `json:"caseId"`
	SeatID      string         `json:"seatId"`
	BundleName  string         `json:"bundleName"`
	DeviceModel string         `json:"deviceModel"`
	Equipment   map[string]any `json:"equipment"`
	Seating     map[string]any `json:"seating"`
	CreatedAt   time.Time      `json:"createdAt"`
}
