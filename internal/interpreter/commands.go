package interpreter

import (
	"fmt"
	"strings"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Alert probabilities.
const (
	ScanAlertChance    = 0.20
	ExploitAlertChance = 0.15
)

// Alert lines.
const (
	ScanAlertMessage    = "ALERT: Intrusion detection system flagged your scan attempt."
	ExploitAlertMessage = "ALERT: Unexpected system instability. Logs being generated."
)

// ScanAlertDetectionRisk is the extra detection risk of a scan alert.
const ScanAlertDetectionRisk = 8

var (
	red  = []model.Role{model.RoleRed}
	blue = []model.Role{model.RoleBlue}
)

func registerBuiltins(in *Interpreter) {
	in.Register("help", Spec{Usage: "help", Summary: "Show this help message"},
		CommandFunc(func(req Request) Effect {
			return Effect{Output: in.Help(req.Mission.Role)}
		}))
	in.Register("objectives", Spec{Usage: "objectives", Summary: "List mission objectives"},
		CommandFunc(objectives))
	in.Register("status", Spec{Usage: "status", Summary: "Show current mission status"},
		CommandFunc(status))
	in.Register("scenarios", Spec{Usage: "scenarios", Summary: "List available scenarios"},
		CommandFunc(scenarios))
	in.Register("scenario", Spec{Hidden: true}, CommandFunc(scenarios))
	in.Register("clear", Spec{Usage: "clear", Summary: "Clear terminal"},
		CommandFunc(func(Request) Effect {
			return Effect{ClearHistory: true}
		}))

	in.Register("scan", Spec{Usage: "scan [target]", Summary: "Scan for vulnerabilities", Roles: red, MaxArgs: 1}, verb{
		output: "Scanning target systems...\n" +
			"Found open ports: 22 (SSH), 80 (HTTP), 443 (HTTPS), 3306 (MySQL)\n" +
			"Potential vulnerabilities detected:\n" +
			"- Outdated SSH version (CVE-2023-1234)\n" +
			"- Unpatched web server (CVE-2023-5678)\n" +
			"- Weak MySQL configuration",
		delta:    model.Delta{Technical: 5, DetectionRisk: 2},
		keywords: []string{"reconnaissance"},
		alert:    &alertRule{chance: ScanAlertChance, message: ScanAlertMessage, detectionRisk: ScanAlertDetectionRisk},
	})
	in.Register("exploit", Spec{Usage: "exploit [target]", Summary: "Attempt exploitation", Roles: red, MaxArgs: 1}, verb{
		output: "Attempting exploitation...\n" +
			"Successfully exploited SSH vulnerability!\n" +
			"Gained user-level access to target system.\n" +
			"Warning: Ensure you have proper authorization for this test.",
		delta:    model.Delta{Technical: 8, Ethics: -2, DetectionRisk: 6},
		keywords: []string{"exploit"},
		alert:    &alertRule{chance: ExploitAlertChance, message: ExploitAlertMessage},
	})
	in.Register("monitor", Spec{Usage: "monitor [system]", Summary: "Monitor for threats", Roles: blue, MaxArgs: 1}, verb{
		output: "Monitoring network traffic...\n" +
			"Detected suspicious activity:\n" +
			"- Multiple failed login attempts from IP 192.168.1.100\n" +
			"- Unusual outbound traffic to unknown domain\n" +
			"- Potential data exfiltration detected",
		delta:    model.Delta{Technical: 6, DetectionRisk: -3},
		keywords: []string{"monitor"},
	})
	in.Register("analyze", Spec{Usage: "analyze [log]", Summary: "Analyze log files", Roles: blue, MaxArgs: 1}, verb{
		output: "Analyzing security logs...\n" +
			"Found indicators of compromise:\n" +
			"- Successful login after multiple failures\n" +
			"- Privilege escalation attempts\n" +
			"- Suspicious file access patterns\n" +
			"- Evidence of lateral movement",
		delta:    model.Delta{Technical: 7, DetectionRisk: -2},
		keywords: []string{"analyze"},
	})
	in.Register("patch", Spec{Usage: "patch [system]", Summary: "Apply security patches", Roles: blue, MaxArgs: 1}, verb{
		output: "Applying security patches...\n" +
			"Successfully patched:\n" +
			"- SSH server updated to latest version\n" +
			"- Web server security patches applied\n" +
			"- Database configuration hardened\n" +
			"System security posture improved.",
		delta:    model.Delta{Technical: 8, Ethics: 5, DetectionRisk: -5},
		keywords: []string{"patch", "contain"},
	})
	in.Register("report", Spec{Usage: "report [finding]", Summary: "Document findings", MaxArgs: 1}, verb{
		output: "Generating security report...\n" +
			"Report includes:\n" +
			"- Executive summary of findings\n" +
			"- Technical details and evidence\n" +
			"- Risk assessment and prioritization\n" +
			"- Remediation recommendations\n" +
			"- Timeline for implementation\n" +
			"Report saved successfully.",
		delta:    model.Delta{Technical: 5, Ethics: 8},
		keywords: []string{"document", "recommend"},
	})
}

func objectives(req Request) Effect {
	var b strings.Builder
	b.WriteString("Mission Objectives:")
	for i, obj := range req.Mission.Objectives {
		mark := "○"
		if obj.Completed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "\n%d. %s %s", i+1, obj.Description, mark)
	}
	return Effect{Output: b.String()}
}

func status(req Request) Effect {
	m := req.Mission
	done := len(m.CompletedObjectiveIDs())
	return Effect{Output: fmt.Sprintf("Mission: %s\nStatus: %s\nProgress: %d/%d objectives completed\n"+
		"Technical Score: %d\nEthics Score: %d\nDetection Risk: %d",
		m.Title, req.Status, done, len(m.Objectives),
		req.Metrics.TechnicalScore, req.Metrics.EthicsScore, req.Metrics.DetectionRisk)}
}

func scenarios(req Request) Effect {
	available := req.Mission.AvailableScenarios()
	if len(available) == 0 {
		return Effect{Output: NoScenariosOutput}
	}
	var b strings.Builder
	b.WriteString("Available Scenarios:")
	for i, s := range available {
		fmt.Fprintf(&b, "\n%d. %s (ID: %s)\n   %s", i+1, s.Title, s.ID, s.Description)
	}
	return Effect{Output: b.String()}
}

type alertRule struct {
	chance        float64
	message       string
	detectionRisk int
}

// verb is a role command with canned output and fixed impacts.
type verb struct {
	output   string
	delta    model.Delta
	keywords []string
	alert    *alertRule
}

// Execute reports the verb's impacts and rolls its alert only while the
// mission is in progress. Afterwards just the canned output is returned.
func (v verb) Execute(req Request) Effect {
	if req.Status != model.StatusInProgress {
		return Effect{Output: v.output}
	}
	eff := Effect{
		Output:               v.output,
		TechnicalScoreImpact: v.delta.Technical,
		EthicsImpact:         v.delta.Ethics,
		DetectionRiskImpact:  v.delta.DetectionRisk,
	}
	if id := MatchObjective(req.Mission, v.keywords...); id != "" {
		eff.CompletesObjectives = []string{id}
	}
	if v.alert != nil && req.Random.Float64() < v.alert.chance {
		eff.Alerts = append(eff.Alerts, Alert{
			Message:             v.alert.message,
			DetectionRiskImpact: v.alert.detectionRisk,
		})
	}
	return eff
}

// MatchObjective returns the first incomplete objective whose description
// contains any keyword, or "" if none does. Matching is case-sensitive, so
// "Monitor network traffic" is not completed by the keyword "monitor".
func MatchObjective(m *model.Mission, keywords ...string) string {
	for _, obj := range m.Objectives {
		if obj.Completed {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(obj.Description, kw) {
				return obj.ID
			}
		}
	}
	return ""
}
