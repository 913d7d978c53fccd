package model

// Task status values.
const (
	TaskPending   = "PENDING"
	TaskCompleted = "COMPLETED"
	TaskCanceled  = "CANCELED"
)

// User is the account that owns every other entity transitively via user_id.
type User struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	Zipcode   string      `json:"zipcode"`
	CreatedAt EpochMillis `json:"createdAt"`
	UpdatedAt EpochMillis `json:"updatedAt"`
}

// Client is a customer of the practitioner. Referenced optionally by Task.
type Client struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Description string      `json:"description"`
	CreatedAt   EpochMillis `json:"createdAt"`
	UpdatedAt   EpochMillis `json:"updatedAt"`
}

// CoWorker is a helper the practitioner can assign to a task as an assistant.
type CoWorker struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	CreatedAt EpochMillis `json:"createdAt"`
	UpdatedAt EpochMillis `json:"updatedAt"`
}

// Note is a free-form reminder, attachable to tasks via join rows.
type Note struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ReminderDate EpochMillis `json:"reminder_date"`
	CreatedAt    EpochMillis `json:"createdAt"`
	UpdatedAt    EpochMillis `json:"updatedAt"`
}

// Template describes the materials required for a ritual. Its items are a
// replace set: updates delete and reinsert the whole collection.
type Template struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Items       []ItemTemplate `json:"items"`
	CreatedAt   EpochMillis    `json:"createdAt"`
	UpdatedAt   EpochMillis    `json:"updatedAt"`
}

// ItemTemplate is a single material line on a template.
type ItemTemplate struct {
	ID         string  `json:"id"`
	TemplateID string  `json:"template_id"`
	ItemName   string  `json:"itemname"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

// Bill prices the materials of a ritual. Items follow the same replace-set
// rule as template items. TotalAmount is recomputed server-side from the
// items, overwriting whatever the client sent.
type Bill struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Name          string      `json:"name"`
	TemplateID    string      `json:"template_id,omitempty"`
	TotalAmount   float64     `json:"totalamount"`
	PaymentStatus string      `json:"paymentstatus"`
	Items         []ItemBill  `json:"items"`
	CreatedAt     EpochMillis `json:"createdAt"`
	UpdatedAt     EpochMillis `json:"updatedAt"`
}

// ItemBill is a priced material line on a bill.
type ItemBill struct {
	ID           string  `json:"id"`
	BillID       string  `json:"bill_id"`
	ItemName     string  `json:"itemname"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	MarketRate   float64 `json:"marketrate"`
	ExtraCharges float64 `json:"extracharges"`
	Note         string  `json:"note"`
}

// LineTotal is the contribution of one bill item to the bill total.
func (i ItemBill) LineTotal() float64 {
	return i.Quantity*i.MarketRate + i.ExtraCharges
}

// BillTotal sums quantity*marketrate+extracharges across items.
func BillTotal(items []ItemBill) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Payment is a money record. It is not owned by a user directly; it is
// referenced by a TaskPayment or TaskAssistant row. PaymentStatus is
// independent of the task status.
type Payment struct {
	ID                string      `json:"id"`
	TotalAmount       float64     `json:"totalamount"`
	PaidAmount        float64     `json:"paidamount"`
	PaymentDate       EpochMillis `json:"paymentdate"`
	PaymentMode       string      `json:"paymentmode"`
	OnlinePaymentMode string      `json:"onlinepaymentmode"`
	PaymentStatus     string      `json:"paymentstatus"`
	CreatedAt         EpochMillis `json:"createdAt"`
	UpdatedAt         EpochMillis `json:"updatedAt"`
}

// TaskAssistant assigns a co-worker to a task, optionally with its own
// payment record.
type TaskAssistant struct {
	ID          string   `json:"id"`
	TaskID      string   `json:"task_id"`
	AssistantID string   `json:"assistant_id"`
	Payment     *Payment `json:"payment,omitempty"`
}

// Task is the central aggregate: a scheduled ritual with attached notes,
// assistants and payments. NoteIDs, Assistants and Payment are replace sets;
// an update request supplies the full new collections.
type Task struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TaskOwnerID string          `json:"taskOwner_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Date        EpochMillis     `json:"date"`
	StartTime   EpochMillis     `json:"starttime"`
	EndTime     EpochMillis     `json:"endtime"`
	Self        bool            `json:"self"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
	ClientID    string          `json:"client_id,omitempty"`
	TemplateID  string          `json:"template_id,omitempty"`
	BillID      string          `json:"bill_id,omitempty"`
	NoteIDs     []string        `json:"note_ids"`
	Assistants  []TaskAssistant `json:"assistants"`
	Payment     *Payment        `json:"payment,omitempty"`
	CreatedAt   EpochMillis     `json:"createdAt"`
	UpdatedAt   EpochMillis     `json:"updatedAt"`
}

// ValidTaskStatus reports whether s is one of the known task states.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskCompleted, TaskCanceled:
		return true
	}
	return false
}
