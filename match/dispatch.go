package match

// kindPair keys the specialization table.
type kindPair struct {
	left, right Kind
}

type planFactory func(env *Env, op Operator, left, right Match) (plan, bool)

// planTable lists the operand pairs with type-specialized merges. Every other
// pair uses the generic instantiation.
var planTable = map[kindPair]planFactory{
	{KindTerm, KindTerm}:     specializedPlan[*TermMatch, *TermMatch],
	{KindTerm, KindBinary}:   specializedPlan[*TermMatch, *BinaryMatch],
	{KindBinary, KindTerm}:   specializedPlan[*BinaryMatch, *TermMatch],
	{KindBinary, KindBinary}: specializedPlan[*BinaryMatch, *BinaryMatch],
}

func specializedPlan[L, R Match](env *Env, op Operator, left, right Match) (plan, bool) {
	l, lok := left.(L)
	r, rok := right.(R)
	if !lok || !rok {
		return nil, false
	}
	return buildPlan(env, op, l, r), true
}

func buildPlan[L, R Match](env *Env, op Operator, left L, right R) plan {
	if op == OperatorAnd {
		return newAndPlan(env, left, right)
	}
	return newOrPlan(env, left, right)
}

// selectPlan picks the merge for an operand pair and reports whether it is
// specialized.
func selectPlan(env *Env, op Operator, left, right Match) (plan, bool) {
	if env.specialize {
		if factory, ok := planTable[kindPair{left.Kind(), right.Kind()}]; ok {
			if p, ok := factory(env, op, left, right); ok {
				return p, true
			}
		}
	}
	return buildPlan[Match, Match](env, op, left, right), false
}
