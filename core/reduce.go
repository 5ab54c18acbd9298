package core

import (
	"sort"

	"github.com/aeswibon/dora/schema"
)

// reduction holds one DORA dimension at all three aggregation levels.
// Reducers are pure and order-independent: every value is an associative
// sum or an average over an unordered record set.
type reduction struct {
	Users map[string]float64
	Repos map[string]float64
	Org   float64
}

func newReduction() reduction {
	return reduction{
		Users: make(map[string]float64),
		Repos: make(map[string]float64),
	}
}

// accumulator tracks a running sum and count per subject for averages.
type accumulator struct {
	sums   map[string]float64
	counts map[string]int
}

func newAccumulator() accumulator {
	return accumulator{
		sums:   make(map[string]float64),
		counts: make(map[string]int),
	}
}

func (a accumulator) add(subject string, v float64) {
	a.sums[subject] += v
	a.counts[subject]++
}

// averages resolves the accumulator into per-subject averages.
// A subject with no samples never appears; callers zero-fill on merge.
func (a accumulator) averages() map[string]float64 {
	out := make(map[string]float64, len(a.sums))
	for subject, sum := range a.sums {
		if n := a.counts[subject]; n > 0 {
			out[subject] = schema.Round2(sum / float64(n))
		}
	}
	return out
}

// reduceDeployments counts releases per user, per repo, and org-wide.
// Raw counts per window, no normalization.
func reduceDeployments(releases []schema.Release) reduction {
	r := newReduction()
	for _, rel := range releases {
		r.Users[rel.User]++
		r.Repos[rel.Repo]++
		r.Org++
	}
	return r
}

// reduceLeadTime averages merge-to-first-commit lead time in hours over
// merged pull requests. Unmerged PRs are excluded entirely; a subject with
// no merged PRs in the window averages to 0 by omission.
func reduceLeadTime(prs []schema.PullRequest) reduction {
	userAcc := newAccumulator()
	repoAcc := newAccumulator()
	orgAcc := newAccumulator()

	for _, pr := range prs {
		hours, merged := pr.LeadTimeHours()
		if !merged {
			continue
		}
		userAcc.add(pr.User, hours)
		repoAcc.add(pr.Repo, hours)
		orgAcc.add("", hours)
	}

	r := reduction{Users: userAcc.averages(), Repos: repoAcc.averages()}
	r.Org = orgAcc.averages()[""]
	return r
}

// reduceFailureRate computes failures/total*100 over issues per subject.
// An issue is a failure iff its label set contains the failure marker.
// Subjects with zero issues have a rate of 0 by omission.
func reduceFailureRate(issues []schema.Issue) reduction {
	type tally struct{ failures, total int }
	users := make(map[string]*tally)
	repos := make(map[string]*tally)
	var org tally

	bump := func(m map[string]*tally, subject string, failure bool) {
		t := m[subject]
		if t == nil {
			t = &tally{}
			m[subject] = t
		}
		t.total++
		if failure {
			t.failures++
		}
	}

	for _, issue := range issues {
		failure := issue.IsFailure()
		bump(users, issue.User, failure)
		bump(repos, issue.Repo, failure)
		org.total++
		if failure {
			org.failures++
		}
	}

	rate := func(t tally) float64 {
		if t.total == 0 {
			return 0
		}
		return schema.Round2(float64(t.failures) / float64(t.total) * 100)
	}

	r := newReduction()
	for subject, t := range users {
		r.Users[subject] = rate(*t)
	}
	for subject, t := range repos {
		r.Repos[subject] = rate(*t)
	}
	r.Org = rate(org)
	return r
}

// reduceRestoreTime averages close-to-open duration in hours over closed
// failure issues. Open or non-failure issues contribute nothing.
func reduceRestoreTime(issues []schema.Issue) reduction {
	userAcc := newAccumulator()
	repoAcc := newAccumulator()
	orgAcc := newAccumulator()

	for _, issue := range issues {
		hours, ok := issue.RestoreTimeHours()
		if !ok {
			continue
		}
		userAcc.add(issue.User, hours)
		repoAcc.add(issue.Repo, hours)
		orgAcc.add("", hours)
	}

	r := reduction{Users: userAcc.averages(), Repos: repoAcc.averages()}
	r.Org = orgAcc.averages()[""]
	return r
}

// combineReductions joins the four dimensions into one WindowScores set.
// The emitted subject set is the union of subjects appearing in any
// dimension, so a user with deployments but no PRs still appears with the
// other fields zero-filled.
func combineReductions(org string, window schema.TimeWindow, deploy, lead, fail, restore reduction) schema.WindowScores {
	users := subjectUnion(deploy.Users, lead.Users, fail.Users, restore.Users)
	repos := subjectUnion(deploy.Repos, lead.Repos, fail.Repos, restore.Repos)

	scores := schema.WindowScores{
		Window: window,
		Org: schema.OrgMetrics{
			Org: org,
			MetricTuple: schema.MetricTuple{
				DeploymentFrequency:  deploy.Org,
				LeadTimeForChanges:   lead.Org,
				ChangeFailureRate:    fail.Org,
				TimeToRestoreService: restore.Org,
			},
		},
	}

	for _, user := range users {
		scores.Users = append(scores.Users, schema.UserMetrics{
			User: user,
			MetricTuple: schema.MetricTuple{
				DeploymentFrequency:  deploy.Users[user],
				LeadTimeForChanges:   lead.Users[user],
				ChangeFailureRate:    fail.Users[user],
				TimeToRestoreService: restore.Users[user],
			},
		})
	}
	for _, repo := range repos {
		scores.Repos = append(scores.Repos, schema.RepoMetrics{
			Repo: repo,
			MetricTuple: schema.MetricTuple{
				DeploymentFrequency:  deploy.Repos[repo],
				LeadTimeForChanges:   lead.Repos[repo],
				ChangeFailureRate:    fail.Repos[repo],
				TimeToRestoreService: restore.Repos[repo],
			},
		})
	}
	return scores
}

// subjectUnion returns the sorted union of keys across the given maps.
func subjectUnion(maps ...map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for subject := range m {
			seen[subject] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for subject := range seen {
		out = append(out, subject)
	}
	sort.Strings(out)
	return out
}
