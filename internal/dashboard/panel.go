package dashboard

import "fmt"

// Panel is one of the four mutually exclusive dashboard views.
type Panel int

const (
	PanelStaleBranches Panel = iota
	PanelOpenPRs
	PanelRepoInfo
	PanelActivity
)

// Panels lists every panel in navigation order.
var Panels = []Panel{PanelStaleBranches, PanelOpenPRs, PanelRepoInfo, PanelActivity}

func (p Panel) Title() string {
	switch p {
	case PanelStaleBranches:
		return "Stale Branches"
	case PanelOpenPRs:
		return "Open PRs"
	case PanelRepoInfo:
		return "Repository Info"
	case PanelActivity:
		return "Activity Chart"
	default:
		return fmt.Sprintf("Panel(%d)", int(p))
	}
}

// Slug is the short name used on the command line.
func (p Panel) Slug() string {
	switch p {
	case PanelStaleBranches:
		return "branches"
	case PanelOpenPRs:
		return "prs"
	case PanelRepoInfo:
		return "repo"
	case PanelActivity:
		return "activity"
	default:
		return ""
	}
}

func (p Panel) Valid() bool {
	return p >= PanelStaleBranches && p <= PanelActivity
}

// ParsePanel maps a slug back to its panel.
func ParsePanel(s string) (Panel, error) {
	for _, p := range Panels {
		if p.Slug() == s {
			return p, nil
		}
	}
	return PanelStaleBranches, fmt.Errorf("unknown panel %q (branches|prs|repo|activity)", s)
}

// View is the navigation state: the active panel and whether the
// narrow-screen navigation overlay is showing. The two are independent
// except that selecting a panel always closes the overlay.
type View struct {
	Active  Panel
	NavOpen bool
}

func NewView() View {
	return View{Active: PanelStaleBranches}
}

// Select activates p and closes the overlay. Invalid panels are ignored
// apart from closing the overlay.
func (v View) Select(p Panel) View {
	if p.Valid() {
		v.Active = p
	}
	v.NavOpen = false
	return v
}

// Next selects the panel after the active one, wrapping around.
func (v View) Next() View {
	return v.Select(Panel((int(v.Active) + 1) % len(Panels)))
}

func (v View) OpenNav() View {
	v.NavOpen = true
	return v
}

func (v View) DismissNav() View {
	v.NavOpen = false
	return v
}

func (v View) ToggleNav() View {
	v.NavOpen = !v.NavOpen
	return v
}
