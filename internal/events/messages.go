package events

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage announces a committed transaction to the
// audit feed. Amount stays a decimal string so consumers keep exactness.
type TransactionRecordedMessage struct {
	UserID    int64     `json:"user_id"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Account   string    `json:"account"`
	Day       string    `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(userID int64, amount, category, account, day string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		UserID:    userID,
		Amount:    amount,
		Category:  category,
		Account:   account,
		Day:       day,
		Timestamp: time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
