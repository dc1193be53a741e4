package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// RenderReceipt formats the refund confirmation sent to the customer.
func RenderReceipt(order *domain.OrderRecord, verdict *domain.ImageVerdict) string {
	u := uuid.New()
	txnID := fmt.Sprintf("TXN-%X", u[:4])
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var itemLines []string
	for _, item := range order.Items {
		itemLines = append(itemLines, fmt.Sprintf("   - %dx %s - %.2f", item.Quantity, item.Name, item.Price))
	}
	itemsText := "   - No items listed"
	if len(itemLines) > 0 {
		itemsText = strings.Join(itemLines, "\n")
	}

	reason := "Issue verified by automated review"
	if verdict != nil && verdict.Description != "" {
		reason = verdict.Description
	}

	return fmt.Sprintf(`========================================
         REFUND CONFIRMATION
========================================

Transaction ID : %s
Date           : %s
Order ID       : %s

----------------------------------------
         REFUND DETAILS
----------------------------------------

Status         : APPROVED
Amount         : %.2f

Items Refunded:
%s

Reason         : %s

----------------------------------------
         PAYMENT INFORMATION
----------------------------------------

Your refund will be credited to the
original payment method within 5-7
business days.

========================================
Thank you for your patience.
We apologize for the inconvenience.
========================================

Questions? Contact: support@orderdesk.example
Order ID: %s
`, txnID, timestamp, order.OrderID, order.TotalAmount, itemsText, reason, order.OrderID)
}
