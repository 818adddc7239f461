package app

import (
	"guesswho/internal/domain"
)

// AssignSecret draws a secret for the participant uniformly from the roster
// candidates no other participant holds. Sampling from the explicit
// unassigned subset keeps the draw bounded even as the pool shrinks.
// Re-assigning an existing participant returns their original secret.
func (s *Service) AssignSecret(sess *domain.Session, participantID string) (string, error) {
	if secret, ok := sess.Secrets[participantID]; ok {
		return secret, nil
	}

	taken := make(map[string]struct{}, len(sess.Secrets))
	for _, secret := range sess.Secrets {
		taken[secret] = struct{}{}
	}

	unassigned := make([]string, 0, len(sess.Roster)-len(taken))
	for _, candidate := range sess.Roster {
		if _, ok := taken[candidate]; !ok {
			unassigned = append(unassigned, candidate)
		}
	}
	if len(unassigned) == 0 {
		return "", ErrSecretsExhausted
	}

	secret := unassigned[s.rng.Intn(len(unassigned))]
	sess.Secrets[participantID] = secret
	sess.Ledger(participantID)
	return secret, nil
}
