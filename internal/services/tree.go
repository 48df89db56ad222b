package services

import (
	"sort"
	"strings"

	"github.com/dealflow/backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildTree arranges a flat, company-scoped document list into an ordered
// forest. A node whose parent is absent from the input is placed at the
// root rather than rejected, so a list fetched while another client is
// deleting folders still renders. The output depends only on the set of
// inputs, not their order.
func BuildTree(documents []models.Document) []*models.DocumentTreeNode {
	index := make(map[uuid.UUID]*models.DocumentTreeNode, len(documents))
	for i := range documents {
		index[documents[i].ID] = &models.DocumentTreeNode{Document: documents[i]}
	}

	roots := make([]*models.DocumentTreeNode, 0, len(documents))
	for i := range documents {
		node := index[documents[i].ID]
		if parentID := documents[i].ParentID; parentID != nil {
			if parent, ok := index[*parentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	collator := collate.New(language.Und, collate.IgnoreCase)
	sortSiblings(collator, roots)
	for _, node := range index {
		sortSiblings(collator, node.Children)
	}
	return roots
}

// sortSiblings orders folders before files, then by collated name, then
// by id so equal names still sort deterministically.
func sortSiblings(collator *collate.Collator, nodes []*models.DocumentTreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Kind != b.Kind {
			return a.Kind == models.DocumentKindFolder
		}
		if cmp := collator.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})
}
