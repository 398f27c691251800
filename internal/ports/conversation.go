package ports

import "github.com/bnema/me2u/internal/domain"

// ConversationSpawner starts one conversation process for a peer and hands
// back the parent's ends of its two pipes.
type ConversationSpawner interface {
	Spawn(peer string) (domain.ConversationWindow, error)
}

type WindowManager interface {
	OpenOrGet(peer string) (*domain.ConversationWindow, error)
	Forward(window *domain.ConversationWindow, raw []byte) error
	Close(peer string) error
}
