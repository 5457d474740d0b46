package app

import (
	"errors"
	"sync"
)

// GroupRules is the markdown shown before a user may join a group.
const GroupRules = `# Group Rules

Here are the rules for joining this group:

1. Be respectful.
2. Adhere to the time limits.
3. Collateral will be forfeited if rules are broken.
`

// DefaultJoined is the member count a group starts with.
const DefaultJoined = 6

var ErrRulesNotAccepted = errors.New("app: agree to the rules to join the group")

// Group tracks the join screen: rule agreement, the member count and the
// checkbox options shown next to the payment button.
type Group struct {
	mu            sync.Mutex
	agreed        bool
	autoAuthorize bool
	joined        int
}

func NewGroup() *Group {
	return &Group{joined: DefaultJoined}
}

func (g *Group) AgreeRules(agree bool) {
	g.mu.Lock()
	g.agreed = agree
	g.mu.Unlock()
}

func (g *Group) Agreed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.agreed
}

func (g *Group) SetAutoAuthorize(on bool) {
	g.mu.Lock()
	g.autoAuthorize = on
	g.mu.Unlock()
}

func (g *Group) AutoAuthorize() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.autoAuthorize
}

// RequestJoin checks that the rules were accepted; the caller then opens the
// payment workflow.
func (g *Group) RequestJoin() error {
	if !g.Agreed() {
		return ErrRulesNotAccepted
	}
	return nil
}

// PaymentSucceeded counts the user as a member.
func (g *Group) PaymentSucceeded() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.joined++
	return g.joined
}

func (g *Group) Joined() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.joined
}
