package game

// CalculateDamage computes how hard a spell hits a creature: spell damage
// reduced by armor and the creature's resistance to the spell's element,
// never below 1 so a connecting hit always costs something.
func CalculateDamage(c *CreatureStats, s *Spell) int {
	dmg := s.Damage - c.Armor
	if res, ok := c.Resistances[s.Element]; ok {
		dmg -= res
	}
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
