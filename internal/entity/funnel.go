package entity

type FunnelStage string

const (
	StageNew          FunnelStage = "new"
	StageFirstContact FunnelStage = "first_contact"
	StageQualified    FunnelStage = "qualified"
	StageProposal     FunnelStage = "proposal"
	StageEnrolled     FunnelStage = "enrolled"
	StageLost         FunnelStage = "lost"
)

// FunnelStages na ordem das colunas do kanban.
var FunnelStages = []FunnelStage{
	StageNew,
	StageFirstContact,
	StageQualified,
	StageProposal,
	StageEnrolled,
	StageLost,
}

func (s FunnelStage) Valid() bool {
	for _, st := range FunnelStages {
		if st == s {
			return true
		}
	}
	return false
}

// IsOpen indica se o lead ainda está em negociação.
func (s FunnelStage) IsOpen() bool {
	switch s {
	case StageNew, StageFirstContact, StageQualified, StageProposal:
		return true
	}
	return false
}

// CanMoveTo aplica as regras de transição do funil.
// Etapas abertas podem ir para qualquer outra; matriculado só pode ser perdido;
// perdido só pode ser reaberto em uma etapa aberta.
func (s FunnelStage) CanMoveTo(to FunnelStage) bool {
	if !s.Valid() || !to.Valid() || s == to {
		return false
	}
	switch s {
	case StageEnrolled:
		return to == StageLost
	case StageLost:
		return to.IsOpen()
	default:
		return true
	}
}
