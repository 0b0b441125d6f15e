package activity

import (
	"errors"
	"fmt"
	"time"
)

// Type tags used in seed data.
const (
	TypeResource = "resource"
	TypeEvent    = "event"
	TypeStudent  = "student"
)

// ErrUnknownType is returned when a tag names no variant.
var ErrUnknownType = errors.New("unknown activity type")

// Item is one entry of the home feed. The set of variants is closed:
// ResourceActivity, EventActivity and StudentActivity.
type Item interface {
	Type() string
	Headline() string
	OccurredAt() time.Time
	sealed()
}

// ResourceActivity announces a shared study resource.
type ResourceActivity struct {
	Title     string
	Author    string
	At        time.Time
	Views     int
	Downloads int
}

// EventActivity announces an upcoming event.
type EventActivity struct {
	Title     string
	Organizer string
	At        time.Time
	EventDate time.Time
}

// StudentActivity announces a newcomer.
type StudentActivity struct {
	Name  string
	Batch string
	At    time.Time
}

func (ResourceActivity) Type() string { return TypeResource }
func (EventActivity) Type() string    { return TypeEvent }
func (StudentActivity) Type() string  { return TypeStudent }

func (a ResourceActivity) Headline() string { return a.Title }
func (a EventActivity) Headline() string    { return a.Title }
func (a StudentActivity) Headline() string  { return fmt.Sprintf("New Student: %s joined", a.Name) }

func (a ResourceActivity) OccurredAt() time.Time { return a.At }
func (a EventActivity) OccurredAt() time.Time    { return a.At }
func (a StudentActivity) OccurredAt() time.Time  { return a.At }

func (ResourceActivity) sealed() {}
func (EventActivity) sealed()    {}
func (StudentActivity) sealed()  {}

// Byline returns the secondary line shown under the headline.
// Every variant is handled; a new variant that is not added here panics in tests.
func Byline(item Item) string {
	switch a := item.(type) {
	case ResourceActivity:
		return a.Author
	case EventActivity:
		return a.Organizer
	case StudentActivity:
		return a.Batch
	default:
		panic(fmt.Sprintf("activity: unhandled variant %T", item))
	}
}
