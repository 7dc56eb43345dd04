package manifest

import (
	"errors"

	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

// Notifier announces events to the user.
type Notifier interface {
	Notify(title, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string) error

func (f NotifierFunc) Notify(title, message string) error { return f(title, message) }

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(title, message string) error {
	if n.Logger != nil {
		n.Logger.Info(title, zap.String("message", message))
	}
	return nil
}

// DesktopNotifier shows a native desktop notification.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, message string) error {
	return zenity.Notify(message, zenity.Title(title), zenity.Icon(zenity.InfoIcon))
}

// Notifiers fans a notification out to every member and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Notify(title, message string) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
