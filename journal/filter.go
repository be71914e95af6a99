package journal

import (
	"cmp"
	"slices"
	"time"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter selects events by (eventType OR eventType...) AND (predicate OR predicate...) AND time range.
// An empty event type list matches any type, an empty predicate list matches any payload.
type Filter struct {
	eventTypes    []FilterEventTypeString
	predicates    []FilterPredicate
	occurredFrom  time.Time
	occurredUntil time.Time
}

func (f Filter) EventTypes() []FilterEventTypeString {
	return f.eventTypes
}

func (f Filter) Predicates() []FilterPredicate {
	return f.predicates
}

func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// Matches reports whether an event with the given type, time and top-level payload fields
// is selected by the Filter.
func (f Filter) Matches(eventType string, occurredAt time.Time, payload map[string]any) bool {
	if len(f.eventTypes) > 0 && !slices.Contains(f.eventTypes, eventType) {
		return false
	}

	if !f.occurredFrom.IsZero() && occurredAt.Before(f.occurredFrom) {
		return false
	}

	if !f.occurredUntil.IsZero() && occurredAt.After(f.occurredUntil) {
		return false
	}

	if len(f.predicates) == 0 {
		return true
	}

	for _, predicate := range f.predicates {
		if val, ok := payload[predicate.key].(string); ok && val == predicate.val {
			return true
		}
	}

	return false
}

/***** FilterPredicate *****/

// FilterPredicate matches a top-level string field of the event payload.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a Filter. It must be finished with Finalize().
type FilterBuilder struct {
	filter Filter
}

// BuildFilter starts a new FilterBuilder.
func BuildFilter() FilterBuilder {
	return FilterBuilder{}
}

// MatchingAnyEvent creates an empty Filter which selects every event.
func MatchingAnyEvent() Filter {
	return Filter{}
}

// AnyEventTypeOf adds event types, expecting ANY of them to match.
// Empty event types are dropped, the rest is sorted and deduplicated.
func (fb FilterBuilder) AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterBuilder {
	all := slices.Clone(fb.filter.eventTypes)
	all = append(all, eventType)
	all = append(all, eventTypes...)
	all = slices.DeleteFunc(all, func(et FilterEventTypeString) bool { return et == "" })
	slices.Sort(all)
	fb.filter.eventTypes = slices.Compact(all)

	return fb
}

// AndAnyPredicateOf adds predicates, expecting ANY of them to match.
// Partial predicates (empty key or val) are dropped, the rest is sorted and deduplicated.
func (fb FilterBuilder) AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	all := slices.Clone(fb.filter.predicates)
	all = append(all, predicate)
	all = append(all, predicates...)
	all = slices.DeleteFunc(all, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(all, func(a, b FilterPredicate) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.val, b.val))
	})
	fb.filter.predicates = slices.Compact(all)

	return fb
}

// OccurredFrom restricts the Filter to events that occurred at or after t.
func (fb FilterBuilder) OccurredFrom(t time.Time) FilterBuilder {
	fb.filter.occurredFrom = t

	return fb
}

// OccurredUntil restricts the Filter to events that occurred at or before t.
func (fb FilterBuilder) OccurredUntil(t time.Time) FilterBuilder {
	fb.filter.occurredUntil = t

	return fb
}

// Finalize returns the built Filter.
func (fb FilterBuilder) Finalize() Filter {
	return fb.filter
}
