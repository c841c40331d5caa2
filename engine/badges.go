/*
badges.go - Badge evaluation from recognition history

PURPOSE:
  A badge is earned by accumulating a threshold count of recognitions of
  one principle. The earn date is the timestamp of the chronologically
  threshold-th qualifying event - the moment the achievement happened -
  so it stays stable as more qualifying recognitions accrue afterwards.

PROPERTIES:
  - Pure: the input slice is never mutated, two calls on the same history
    yield identical output
  - Complete: every definition appears in the result, in definition order,
    including badges with zero qualifying events
  - Order-independent: earn dates do not depend on input ordering
*/
package engine

import (
	"sort"
	"time"
)

// BadgeDefinition binds a badge to one company-value principle.
type BadgeDefinition struct {
	Name        string
	Principle   string
	Description string
}

// EarnedBadge is the evaluation result for one definition.
type EarnedBadge struct {
	BadgeDefinition
	Count    int
	Earned   bool
	EarnedAt *time.Time
}

// BadgeEvaluator evaluates a fixed badge catalog against a user's received
// recognitions.
type BadgeEvaluator struct {
	Definitions []BadgeDefinition
	Threshold   int
}

// CalculateEarnedBadges returns one EarnedBadge per definition, in
// definition order, for the recognitions received by one user.
func (e BadgeEvaluator) CalculateEarnedBadges(received []RecognitionEvent) []EarnedBadge {
	byPrinciple := make(map[string][]RecognitionEvent)
	for _, ev := range received {
		byPrinciple[ev.Principle] = append(byPrinciple[ev.Principle], ev)
	}

	out := make([]EarnedBadge, 0, len(e.Definitions))
	for _, def := range e.Definitions {
		relevant := byPrinciple[def.Principle]
		badge := EarnedBadge{BadgeDefinition: def, Count: len(relevant)}

		if len(relevant) >= e.Threshold {
			badge.Earned = true
			// Sort a copy: the snapshot slice must stay untouched.
			sorted := make([]RecognitionEvent, len(relevant))
			copy(sorted, relevant)
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].Timestamp.Before(sorted[j].Timestamp)
			})
			at := sorted[e.Threshold-1].Timestamp
			badge.EarnedAt = &at
		}

		out = append(out, badge)
	}
	return out
}

// DefaultBadges is the production badge catalog.
func DefaultBadges() []BadgeDefinition {
	return []BadgeDefinition{
		{Name: "Maestro de la Innovación", Principle: "Innovación", Description: "Premiado por ideas creativas que rompen esquemas y mejoran procesos."},
		{Name: "Campeón del Cliente", Principle: "Foco en el Cliente", Description: "Destacado por ir más allá para satisfacer y deleitar a los clientes."},
		{Name: "Colaborador Estrella", Principle: "Trabajo en Equipo", Description: "Celebrado por fomentar un ambiente de cooperación y apoyo mutuo."},
		{Name: "Ejecutor Impecable", Principle: "Excelencia", Description: "Reconocido por entregar resultados de alta calidad de manera consistente."},
		{Name: "Pilar de Integridad", Principle: "Integridad", Description: "Premiado por actuar siempre con honestidad, transparencia y ética."},
	}
}
