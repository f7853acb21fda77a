package ledger

import (
	"fmt"
	"time"
)

type EntryType string

const (
	Income  EntryType = "income"  // приход
	Expense EntryType = "expense" // расход
)

// ParseType принимает тип операции извне (API); допустимы только income/expense.
func ParseType(s string) (EntryType, error) {
	switch EntryType(s) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("неизвестный тип операции: %q", s)
}

type Entry struct {
	ID            int64
	MaterialID    int64
	Type          EntryType
	Amount        int64
	Comment       string
	OperationDate time.Time
}

// Row — строка истории операций: имя материала уже подтянуто
// (пустая строка, если материал удалён).
type Row struct {
	ID            int64
	MaterialName  string
	Type          EntryType
	Amount        int64
	Comment       string
	OperationDate time.Time
}
