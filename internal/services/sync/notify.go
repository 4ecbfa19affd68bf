package sync

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier delivers revenue-increase alerts through the OS
// notification facility. Delivery failures are swallowed.
type DesktopNotifier struct{}

// NotifyIncrease implements Notifier.
func (DesktopNotifier) NotifyIncrease(amount float64, currency string) {
	title := "Revenue increased"
	body := fmt.Sprintf("+%.2f %s since the last check", amount, currency)
	_ = beeep.Notify(title, body, "")
}
