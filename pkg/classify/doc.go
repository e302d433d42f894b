// Package classify decides, for one item at a time, whether it may be converted
// and which rule list of a rules.RuleSet applies to it.
//
// An item is eligible when it is playable, its category is convertible
// (weapon, ammo, armor, misc), none of its tags is excluded by the rule set,
// and, with ExcludeSpecialState, it is not enchanted.
//
// Matching is by case-insensitive substring: a match-key applies when it is
// contained in a tag's text. When several keys apply the last one encountered
// wins, so rule authors order specific keys after general ones.
package classify
