package claim

import "errors"

var (
	ErrDuplicateClaim       = errors.New("already claimed")
	ErrChallengeUnavailable = errors.New("challenge is not active")
	ErrInvalidClaimKind     = errors.New("invalid claim kind")
	ErrReferential          = errors.New("player or challenge does not belong to game")
	ErrEventNotFound        = errors.New("claim event not found")
	ErrGameEnded            = errors.New("game has ended")
)
