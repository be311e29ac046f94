package battle

import (
	"sort"

	"github.com/udisondev/turnbattle/internal/model"
)

// BuildTurnOrder concatenates players then enemies and sorts them by speed,
// fastest first. Ties keep concatenation order.
func BuildTurnOrder(players, enemies []*model.Participant) []*model.Participant {
	order := make([]*model.Participant, 0, len(players)+len(enemies))
	order = append(order, players...)
	order = append(order, enemies...)

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Speed() > order[j].Speed()
	})
	return order
}

func indexOf(list []*model.Participant, p *model.Participant) int {
	for i, x := range list {
		if x == p {
			return i
		}
	}
	return -1
}

func removeAt(list []*model.Participant, i int) []*model.Participant {
	return append(list[:i], list[i+1:]...)
}

func allDead(list []*model.Participant) bool {
	for _, p := range list {
		if p.IsAlive() {
			return false
		}
	}
	return true
}
