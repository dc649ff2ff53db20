package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Jeomhps/formation-admin/internal/client"
)

type seeded struct {
	professors int
	formations int
}

// seed creates professors first so formations can reference their ids.
// A formation whose professors failed is skipped, not sent half-linked.
func seed(ctx context.Context, cli *client.Client, cat *Catalog, out io.Writer) (seeded, error) {
	var n seeded
	ids := map[string]int64{}
	failed := false

	for _, p := range cat.Professors {
		id, err := cli.CreateProfessor(ctx, client.Professor{
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Image:        p.Image,
			Profile:      p.Profile,
			Certificates: p.Certificates,
		})
		if err != nil {
			failed = true
			fmt.Fprintf(out, "Failed to add professor %s: %v\n", p.Key, err)
			continue
		}
		ids[p.Key] = id
		n.professors++
		fmt.Fprintf(out, "Added professor %s %s (id=%d)\n", p.FirstName, p.LastName, id)
	}

	for _, f := range cat.Formations {
		profIDs := make([]int64, 0, len(f.Professors))
		missing := false
		for _, k := range f.Professors {
			id, ok := ids[k]
			if !ok {
				missing = true
				break
			}
			profIDs = append(profIDs, id)
		}
		if missing {
			failed = true
			fmt.Fprintf(out, "Skipping formation %q: a professor was not created\n", f.Title)
			continue
		}
		id, err := cli.CreateFormation(ctx, client.Formation{
			Title:         f.Title,
			StartDate:     f.StartDate,
			EndDate:       f.EndDate,
			Duration:      f.Duration,
			Location:      f.Location,
			ClassSize:     f.ClassSize,
			Prerequisites: f.Prerequisites,
			Description:   f.Description,
			Detail:        f.Detail,
			Images:        f.Images,
			ProfessorIDs:  profIDs,
		})
		if err != nil {
			failed = true
			fmt.Fprintf(out, "Failed to add formation %q: %v\n", f.Title, err)
			continue
		}
		n.formations++
		fmt.Fprintf(out, "Added formation %q (id=%d)\n", f.Title, id)
	}

	if failed {
		return n, fmt.Errorf("some catalog entries were not created")
	}
	return n, nil
}
