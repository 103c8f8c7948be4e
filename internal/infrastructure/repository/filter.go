package repository

import (
	"strconv"
	"strings"

	"github.com/niklvrr/mentorq/internal/domain"
)

// buildTicketWhere переводит фильтр видимости в условие WHERE.
// alias префикс таблицы tickets в запросе ("t." или ""), args уже занятые параметры запроса.
func buildTicketWhere(f domain.TicketFilter, alias string, args []any) (string, []any) {
	conds := []string{"1=1"}

	if f.OwnerEmail != "" {
		args = append(args, f.OwnerEmail)
		conds = append(conds, alias+"owner_email = $"+strconv.Itoa(len(args)))
	}
	if len(f.ExcludeStatuses) > 0 {
		statuses := make([]string, 0, len(f.ExcludeStatuses))
		for _, st := range f.ExcludeStatuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, statuses)
		conds = append(conds, "NOT ("+alias+"status = ANY($"+strconv.Itoa(len(args))+"))")
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, alias+"status = $"+strconv.Itoa(len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func buildFeedbackWhere(f domain.FeedbackFilter, args []any) (string, []any) {
	conds := []string{"1=1"}

	if f.OwnerEmail != "" {
		args = append(args, f.OwnerEmail)
		conds = append(conds, "t.owner_email = $"+strconv.Itoa(len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}
