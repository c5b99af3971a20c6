package lake

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	QualityRulesetName    = "hr-lake-quality"
	QualityRulesetVersion = "v1"

	QualityReportSchemaVersion = 1
	QualityMaxIssuesDefault    = 10000
)

const (
	RuleForeignKeyOrphan = "LAKE_Q_001_FK_ORPHAN"
	RuleRefTableMissing  = "LAKE_Q_002_REF_TABLE_MISSING"
	RulePrimaryKeyNull   = "LAKE_Q_003_PK_NULL"
	RulePrimaryKeyDup    = "LAKE_Q_004_PK_DUPLICATE"
	RuleTerminationOrder = "LAKE_Q_005_TERMINATION_BEFORE_HIRE"
	RuleSalaryPositive   = "LAKE_Q_006_SALARY_NON_POSITIVE"
	RuleRatingRange      = "LAKE_Q_007_RATING_OUT_OF_RANGE"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

const (
	CheckPass = "pass"
	CheckFail = "fail"
	CheckSkip = "skip"
)

const (
	ratingMin = 1.0
	ratingMax = 5.0
	// Business rule violations beyond this are counted but not listed.
	maxSampledViolations = 20
)

type QualityRuleset struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type QualitySummary struct {
	Passed      int  `json:"passed"`
	Failed      int  `json:"failed"`
	Skipped     int  `json:"skipped"`
	Errors      int  `json:"errors"`
	Warnings    int  `json:"warnings"`
	IssuesTotal int  `json:"issues_total"`
	Truncated   bool `json:"truncated,omitempty"`
}

type EntityRef struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

type QualityIssue struct {
	IssueID  uuid.UUID      `json:"issue_id"`
	RuleID   string         `json:"rule_id"`
	Severity string         `json:"severity"`
	Entity   EntityRef      `json:"entity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// QualityCheck is one executed rule over one table or column.
type QualityCheck struct {
	RuleID     string `json:"rule_id"`
	Check      string `json:"check"`
	Status     string `json:"status"`
	Violations int64  `json:"violations"`
	Detail     string `json:"detail,omitempty"`
}

type QualityReportV1 struct {
	SchemaVersion int            `json:"schema_version"`
	RunID         uuid.UUID      `json:"run_id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	LakeDir       string         `json:"lake_dir"`
	Ruleset       QualityRuleset `json:"ruleset"`
	Summary       QualitySummary `json:"summary"`
	Checks        []QualityCheck `json:"checks"`
	Issues        []QualityIssue `json:"issues"`
}

// Passed reports whether no check failed.
func (r *QualityReportV1) Passed() bool {
	return r.Summary.Failed == 0
}

func (r *QualityReportV1) addCheck(rule, name string, violations int64, detail string) {
	status := CheckPass
	if violations > 0 {
		status = CheckFail
	}
	r.Checks = append(r.Checks, QualityCheck{RuleID: rule, Check: name, Status: status, Violations: violations, Detail: detail})
}

func (r *QualityReportV1) addIssue(rule, severity string, entity EntityRef, msg string, details map[string]any) {
	r.Issues = append(r.Issues, QualityIssue{
		IssueID:  uuid.New(),
		RuleID:   rule,
		Severity: severity,
		Entity:   entity,
		Message:  msg,
		Details:  details,
	})
}

type idValue struct {
	ID    *string `db:"id"`
	Value *string `db:"value"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RunQuality checks referential integrity, primary keys and the business
// rules over the Parquet files. maxIssues <= 0 uses the default limit.
func (s *Store) RunQuality(ctx context.Context, maxIssues int) (*QualityReportV1, error) {
	ctx, span := tracer.Start(ctx, "lake.RunQuality")
	defer span.End()

	if maxIssues <= 0 {
		maxIssues = QualityMaxIssuesDefault
	}
	report := &QualityReportV1{
		SchemaVersion: QualityReportSchemaVersion,
		RunID:         uuid.New(),
		GeneratedAt:   time.Now().UTC(),
		LakeDir:       s.dir,
		Ruleset:       QualityRuleset{Name: QualityRulesetName, Version: QualityRulesetVersion},
		Issues:        []QualityIssue{},
	}

	available := s.Available()
	for _, t := range available {
		if err := s.checkForeignKeys(ctx, t, report); err != nil {
			return nil, err
		}
	}
	for _, t := range available {
		if err := s.checkPrimaryKey(ctx, t, report); err != nil {
			return nil, err
		}
	}
	if err := s.checkBusinessRules(ctx, report); err != nil {
		return nil, err
	}

	sortQualityIssues(report.Issues)
	if len(report.Issues) > maxIssues {
		report.Issues = report.Issues[:maxIssues]
		report.Summary.Truncated = true
	}
	for _, iss := range report.Issues {
		switch iss.Severity {
		case SeverityError:
			report.Summary.Errors++
		case SeverityWarning:
			report.Summary.Warnings++
		}
	}
	for _, c := range report.Checks {
		switch c.Status {
		case CheckPass:
			report.Summary.Passed++
		case CheckFail:
			report.Summary.Failed++
		case CheckSkip:
			report.Summary.Skipped++
		}
	}
	report.Summary.IssuesTotal = len(report.Issues)
	lakeQualityIssues.WithLabelValues(SeverityError).Set(float64(report.Summary.Errors))
	lakeQualityIssues.WithLabelValues(SeverityWarning).Set(float64(report.Summary.Warnings))
	return report, nil
}

func (s *Store) checkForeignKeys(ctx context.Context, t TableSchema, report *QualityReportV1) error {
	idCol := t.PrimaryKey
	for _, fk := range t.ForeignKeys {
		name := fmt.Sprintf("%s.%s -> %s", t.Path(), fk.Column, fk)
		ref, ok := Lookup(fk.RefTable)
		if !ok || !s.exists(ref) {
			report.Checks = append(report.Checks, QualityCheck{
				RuleID: RuleRefTableMissing, Check: name, Status: CheckSkip,
				Detail: "referenced table " + fk.RefTable + " not found",
			})
			report.addIssue(RuleRefTableMissing, SeverityWarning, EntityRef{Table: t.Path()},
				"referenced table is missing from the lake", map[string]any{"column": fk.Column, "ref_table": fk.RefTable})
			continue
		}

		key := idCol
		if key == "" {
			key = fk.Column
		}
		query := fmt.Sprintf(`SELECT CAST(s.%s AS VARCHAR) AS id, CAST(s.%s AS VARCHAR) AS value FROM %s s
WHERE s.%s IS NOT NULL AND s.%s NOT IN (SELECT r.%s FROM %s r WHERE r.%s IS NOT NULL)
ORDER BY 1`,
			quoteIdent(key), quoteIdent(fk.Column), s.source(t),
			quoteIdent(fk.Column), quoteIdent(fk.Column), quoteIdent(fk.RefColumn), s.source(ref), quoteIdent(fk.RefColumn))
		var orphans []idValue
		if err := s.db.SelectContext(ctx, &orphans, query); err != nil {
			return errors.Wrapf(err, "foreign key check %s", name)
		}
		report.addCheck(RuleForeignKeyOrphan, name, int64(len(orphans)), fmt.Sprintf("%d orphans", len(orphans)))
		for _, o := range orphans {
			report.addIssue(RuleForeignKeyOrphan, SeverityError, EntityRef{Table: t.Path(), ID: deref(o.ID)},
				"value does not exist in the referenced table",
				map[string]any{"column": fk.Column, "value": deref(o.Value), "ref": fk.String()})
		}
	}
	return nil
}

func (s *Store) checkPrimaryKey(ctx context.Context, t TableSchema, report *QualityReportV1) error {
	if t.PrimaryKey == "" {
		return nil
	}
	pk := quoteIdent(t.PrimaryKey)
	nulls, err := s.count(ctx, fmt.Sprintf("%s WHERE %s IS NULL", s.source(t), pk))
	if err != nil {
		return errors.Wrapf(err, "primary key null check %s", t.Path())
	}
	report.addCheck(RulePrimaryKeyNull, fmt.Sprintf("%s.%s NOT NULL", t.Path(), t.PrimaryKey), nulls, fmt.Sprintf("%d nulls", nulls))
	if nulls > 0 {
		report.addIssue(RulePrimaryKeyNull, SeverityError, EntityRef{Table: t.Path()},
			"primary key has null values", map[string]any{"column": t.PrimaryKey, "count": nulls})
	}

	var dups []idValue
	query := fmt.Sprintf(`SELECT CAST(%s AS VARCHAR) AS id, CAST(COUNT(*) AS VARCHAR) AS value FROM %s
WHERE %s IS NOT NULL GROUP BY %s HAVING COUNT(*) > 1 ORDER BY 1`, pk, s.source(t), pk, pk)
	if err := s.db.SelectContext(ctx, &dups, query); err != nil {
		return errors.Wrapf(err, "primary key duplicate check %s", t.Path())
	}
	report.addCheck(RulePrimaryKeyDup, fmt.Sprintf("%s.%s UNIQUE", t.Path(), t.PrimaryKey), int64(len(dups)), fmt.Sprintf("%d duplicated keys", len(dups)))
	for _, d := range dups {
		report.addIssue(RulePrimaryKeyDup, SeverityError, EntityRef{Table: t.Path(), ID: deref(d.ID)},
			"primary key is not unique", map[string]any{"occurrences": deref(d.Value)})
	}
	return nil
}

type businessRule struct {
	rule    string
	table   string
	name    string
	where   string
	message string
}

var businessRules = []businessRule{
	{
		rule: RuleTerminationOrder, table: "employees", name: "employees: term_date >= hire_date",
		where:   "termination_date IS NOT NULL AND termination_date < hire_date",
		message: "termination date is before hire date",
	},
	{
		rule: RuleSalaryPositive, table: "base_salary", name: "base_salary: amount > 0",
		where:   "amount IS NULL OR amount <= 0",
		message: "salary amount is not positive",
	},
	{
		rule: RuleRatingRange, table: "performance_reviews", name: "reviews: rating in [1.0, 5.0]",
		where:   fmt.Sprintf("rating < %.1f OR rating > %.1f", ratingMin, ratingMax),
		message: "rating is outside the 1-5 scale",
	},
}

func (s *Store) checkBusinessRules(ctx context.Context, report *QualityReportV1) error {
	for _, br := range businessRules {
		t, _ := Lookup(br.table)
		if !s.exists(t) {
			report.Checks = append(report.Checks, QualityCheck{RuleID: br.rule, Check: br.name, Status: CheckSkip, Detail: "table not found"})
			continue
		}
		var ids []string
		query := fmt.Sprintf("SELECT CAST(%s AS VARCHAR) FROM %s WHERE %s ORDER BY 1", quoteIdent(t.PrimaryKey), s.source(t), br.where)
		if err := s.db.SelectContext(ctx, &ids, query); err != nil {
			return errors.Wrapf(err, "business rule %s", br.rule)
		}
		report.addCheck(br.rule, br.name, int64(len(ids)), fmt.Sprintf("%d violations", len(ids)))
		for i, id := range ids {
			if i >= maxSampledViolations {
				break
			}
			report.addIssue(br.rule, SeverityError, EntityRef{Table: t.Path(), ID: id}, br.message, nil)
		}
	}
	return nil
}

func sortQualityIssues(issues []QualityIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		if issues[i].RuleID != issues[j].RuleID {
			return issues[i].RuleID < issues[j].RuleID
		}
		if issues[i].Entity.Table != issues[j].Entity.Table {
			return issues[i].Entity.Table < issues[j].Entity.Table
		}
		return issues[i].Entity.ID < issues[j].Entity.ID
	})
}
