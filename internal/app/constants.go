package app

// MaxHumanParticipants caps the number of human participants per session.
const MaxHumanParticipants = 2
