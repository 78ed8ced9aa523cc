// Package feedback builds coaching feedback from a fixed template table. There
// is no video analysis: a template is picked at random for the player's role
// and skill focus and decorated with filler phrases.
package feedback

// DefaultKey is used for both the role and the skill of the fallback entry.
const DefaultKey = "default"

// Handcrafted is the template table, role -> skill -> templates.
var Handcrafted = map[string]map[string][]string{
	"Striker": {
		"Finishing": {
			"Prioritise clean contact over power in crowded zones; attack the far post consistently.",
			"Delay the shot half a step to freeze the defender; finish low across the keeper.",
			"Arrive late for cut-backs; set body earlier before contact.",
		},
		"Movement": {
			"Hold blind-side longer then dart across the front; time double-movements.",
			"Scan the line every 2–3 seconds; align runs with passer’s head-up.",
		},
		"Aerial Duels": {
			"Attack at highest point; create separation before leap.",
			"Open shoulders; steer headers down into corners.",
		},
		"Hold-Up Play": {
			"Use your forearm frame; receive on back foot to escape into the channel.",
			"Pin then roll; cue a runner with your free hand.",
		},
	},
	"Winger": {
		"1v1 Dribbling": {
			"Exploit first step; sell the feint with head/shoulder then burst.",
			"Keep touches tighter near the box; accelerate post-move.",
		},
		"Crossing": {
			"Arrive half-space early; drive cut-backs to the penalty spot.",
			"Vary delivery: near-post fizz vs. far-post loft based on runner shape.",
		},
		"Cutting Inside": {
			"Shift with instep; strike across goal with minimal backlift.",
			"Use inside-out touch to open lane; keep hips closed on contact.",
		},
		"Transition Pace": {
			"Carry with long strides; release earlier to exploit 2v1s.",
			"Outside-foot carry at speed to protect from tackles.",
		},
	},
	"Attacking Midfielder": {
		"Through Balls": {
			"Disguise by looking off target; weight into runner’s path.",
			"Release as defender steps; don’t wait for a perfect picture.",
		},
		"Creativity": {
			"Use third-man runs; play-and-spin to receive facing forward.",
			"One-touch layoffs to accelerate pocket combos.",
		},
		"Final Pass": {
			"Reduce backlift; thread with pace so runner stays in stride.",
			"Clip vs. slide based on keeper’s start position.",
		},
	},
	"Box-to-Box Midfielder": {
		"Ball Recoveries": {
			"Arrive on first touch; tackle through the ball, not at it.",
			"Anticipate second balls; first touch forward after regain.",
		},
		"Link Play": {
			"Keep hips open; one-touch when pressure is tight.",
			"Switch point on second touch to break the press.",
		},
		"Forward Runs": {
			"Time late beyond the striker; attack between CB and FB.",
			"Trigger when wide player receives; overload the box.",
		},
	},
	"CDM / #6": {
		"Defensive Positioning": {
			"Screen lanes, not players; stay goal-side of the 10.",
			"Hold your zone when FBs fly; be the pivot for rest defence.",
		},
		"Interceptions": {
			"Read passer’s hips; step in front as ball is released.",
			"Small constant adjustments; arrive before contact.",
		},
		"Tempo Control": {
			"Speed up on the break; slow to secure rest positions.",
			"Scan both flanks pre-receive; set next pass early.",
		},
	},
	"Fullback": {
		"Overlapping": {
			"Start run on winger’s second touch; curve to receive in stride.",
			"Call early to cue through-pass; cross with minimal setup.",
		},
		"Crossing": {
			"Low driven to penalty spot when defence collapses.",
			"Early whip behind the line when winger pins CB.",
		},
		"1v1 Defending": {
			"Show outside; match feet; wait for heavy touch.",
			"Lower centre; strike through the ball cleanly.",
		},
	},
	"Wingback": {
		"Progressive Runs": {
			"Attack inside channel when winger holds width.",
			"Accelerate after receiving; release before contact.",
		},
		"Delivery": {
			"Pick late runner on cut-back; avoid floaters.",
			"Early cross if striker has front position; back-post when weak-side free.",
		},
		"Pressing": {
			"Curve press to block inside pass; force wide to trap.",
			"Trigger on opposite CB touch; arrive with speed.",
		},
	},
	"Center Back": {
		"Aerial Duels": {
			"Leap off opposite foot; head down into traffic.",
			"Use arms legally for leverage pre take-off.",
		},
		"Aggressive Defending": {
			"Step on poor touches; hips open to recover if bypassed.",
			"Delay in big spaces; tackle hard and clean with cover.",
		},
		"Distribution": {
			"Break lines into the 8; clip diagonals when pressed.",
			"Punch firm into feet; demand the return to switch.",
		},
	},
	"Goalkeeper": {
		"Shot-stopping": {
			"Set earlier/narrower; parry high and wide when close-range.",
			"Attack with leading hand; weight forward on push-offs.",
		},
		"Distribution": {
			"Clip to FB when winger jumps; throw early to beat press.",
			"Flatten side-volley trajectory; hit outside shoulder.",
		},
		"Sweeper Keeper": {
			"Two steps higher in possession; claim balls behind the line.",
			"Clear first; organise immediately after.",
		},
	},
}

// Display order of roles, matching how players pick a position.
var RoleOrder = []string{
	"Striker",
	"Winger",
	"Attacking Midfielder",
	"Box-to-Box Midfielder",
	"CDM / #6",
	"Fullback",
	"Wingback",
	"Center Back",
	"Goalkeeper",
}

// skillOrder keeps skills in the order they appear above.
var skillOrder = map[string][]string{
	"Striker":               {"Finishing", "Movement", "Aerial Duels", "Hold-Up Play"},
	"Winger":                {"1v1 Dribbling", "Crossing", "Cutting Inside", "Transition Pace"},
	"Attacking Midfielder":  {"Through Balls", "Creativity", "Final Pass"},
	"Box-to-Box Midfielder": {"Ball Recoveries", "Link Play", "Forward Runs"},
	"CDM / #6":              {"Defensive Positioning", "Interceptions", "Tempo Control"},
	"Fullback":              {"Overlapping", "Crossing", "1v1 Defending"},
	"Wingback":              {"Progressive Runs", "Delivery", "Pressing"},
	"Center Back":           {"Aerial Duels", "Aggressive Defending", "Distribution"},
	"Goalkeeper":            {"Shot-stopping", "Distribution", "Sweeper Keeper"},
}

var strengths = []string{
	"Tempo control was stable ✅",
	"Scanning frequency acceptable ✅",
	"Decision speed improved ✅",
	"Body shape cleaner before receive ✅",
	"Transitions handled with discipline ✅",
}

var improvements = []string{
	"Improve weak-foot under pressure ⚠️",
	"Accelerate release after first touch ⚠️",
	"Maintain compact distances when stepping ⚠️",
	"Trigger earlier off passer cues ⚠️",
	"Protect central lanes in rest defence ⚠️",
}

var drills = []string{
	"Drill: 6-min 5v2 rondo (2-touch)",
	"Drill: 10x far-post finishes",
	"Drill: 8x clipped diagonals (switch)",
	"Drill: 4x3min counter-press waves",
	"Drill: 12x low driven cut-backs",
}

const defaultFeedback = "Solid session — add specificity next time."
