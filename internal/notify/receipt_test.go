package notify_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderdesk/refundflow/internal/notify"
	"github.com/orderdesk/refundflow/pkg/domain"
)

func sampleOrder() *domain.OrderRecord {
	return &domain.OrderRecord{
		OrderID: "XRD12345",
		Items: []domain.OrderItem{
			{Name: "Ceramic Kettle", Quantity: 1, Price: 64.0},
			{Name: "Paper Filters", Quantity: 2, Price: 8.5},
		},
		TotalAmount: 81.0,
	}
}

func TestRenderReceipt(t *testing.T) {
	verdict := &domain.ImageVerdict{Status: domain.VerdictDefective, Description: "Cracked ceramic body"}
	body := notify.RenderReceipt(sampleOrder(), verdict)

	assert.Contains(t, body, "REFUND CONFIRMATION")
	assert.Contains(t, body, "Order ID       : XRD12345")
	assert.Contains(t, body, "Amount         : 81.00")
	assert.Contains(t, body, "1x Ceramic Kettle - 64.00")
	assert.Contains(t, body, "2x Paper Filters - 8.50")
	assert.Contains(t, body, "Reason         : Cracked ceramic body")
	assert.Regexp(t, regexp.MustCompile(`Transaction ID : TXN-[0-9A-F]{8}`), body)
}

func TestRenderReceipt_NilVerdict(t *testing.T) {
	body := notify.RenderReceipt(sampleOrder(), nil)
	assert.Contains(t, body, "Reason         : Issue verified by automated review")
}

func TestRenderReceipt_UniqueTransactionIDs(t *testing.T) {
	order := sampleOrder()
	first := notify.RenderReceipt(order, nil)
	second := notify.RenderReceipt(order, nil)

	re := regexp.MustCompile(`TXN-[0-9A-F]{8}`)
	assert.NotEqual(t, re.FindString(first), re.FindString(second))
}
