package bank

import "iter"

// OperationsLog is the append-only, time-ordered record of every accepted
// mutation. The operations slice is the single source of truth; the two maps
// are derived indexes into it (positions by operation id, and the ordered
// positions referencing each account).
type OperationsLog struct {
	operations []Operation
	positions  map[OperationID]int
	byAccount  map[AccountID][]int
}

// NewOperationsLog builds an empty log.
func NewOperationsLog() *OperationsLog {
	return &OperationsLog{
		positions: make(map[OperationID]int),
		byAccount: make(map[AccountID][]int),
	}
}

// Append stores the operation under a freshly allocated id and returns that
// id. Validation happens before logging; Append itself never fails.
func (log *OperationsLog) Append(operation Operation) OperationID {
	operation.ID = NewOperationID()
	log.insert(operation)
	return operation.ID
}

// insert stores the operation keeping whatever id it carries. The replay
// path uses it to preserve source log identity.
func (log *OperationsLog) insert(operation Operation) {
	position := len(log.operations)
	log.operations = append(log.operations, operation)
	log.positions[operation.ID] = position
	for _, accountID := range operation.Accounts() {
		log.byAccount[accountID] = append(log.byAccount[accountID], position)
	}
}

// Get returns the operation stored under id.
func (log *OperationsLog) Get(id OperationID) (Operation, bool) {
	position, ok := log.positions[id]
	if !ok {
		return Operation{}, false
	}
	return log.operations[position], true
}

// Len returns the number of logged operations.
func (log *OperationsLog) Len() int {
	return len(log.operations)
}

// All yields every operation in global insertion order. The sequence is
// restartable: each range starts from the beginning.
func (log *OperationsLog) All() iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for _, operation := range log.operations {
			if !yield(operation) {
				return
			}
		}
	}
}

// ForAccount yields the operations referencing the account, in the order
// they occur in the global log.
func (log *OperationsLog) ForAccount(id AccountID) iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for _, position := range log.byAccount[id] {
			if !yield(log.operations[position]) {
				return
			}
		}
	}
}
