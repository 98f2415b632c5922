package bundler

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Bundler records rewritten units in a SQLite database.
type Bundler struct {
	mu sync.Mutex
	db *gorm.DB
}

// NewBundler opens (or creates) the bundle at dbPath.
func NewBundler(dbPath string) (*Bundler, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Bundler{db: db}, nil
}

// Migrate performs database migrations.
func (b *Bundler) Migrate() error {
	return Migrate(b.db)
}

// CheckMigration checks if the database schema is up to date.
func (b *Bundler) CheckMigration() (bool, error) {
	return CheckMigration(b.db)
}

// AddUnit stores the rewrite of one file, replacing any earlier record for
// the same path. source may be empty when the input was a tree.
func (b *Bundler) AddUnit(srcPath, source string, input, output *syntax.Block, stats rewriter.Stats) error {
	inputJSON, err := treeJSON(input)
	if err != nil {
		return fmt.Errorf("failed to serialize input: %w", err)
	}
	outputNode := syntax.ToNode(output)
	outputJSON, err := nodeJSON(outputNode)
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}

	unit := Unit{
		FileName:     srcPath,
		Input:        inputJSON,
		Output:       outputJSON,
		Conditionals: stats.Conditionals,
		Hoisted:      stats.Hoisted,
		Captures:     stats.Captures,
		Scopes:       stats.Scopes,
		Tidied:       stats.Tidied,
	}
	declarations := findDeclarations(srcPath, outputNode)
	references := findReferences(outputNode)

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Transaction(func(tx *gorm.DB) error {
		if source != "" {
			if err := tx.Save(&SourceFile{FileName: srcPath, Contents: source}).Error; err != nil {
				return fmt.Errorf("failed to save source file: %w", err)
			}
		}
		if err := tx.Save(&unit).Error; err != nil {
			return fmt.Errorf("failed to save unit: %w", err)
		}
		if err := tx.Where("file_name = ?", srcPath).Delete(&Declaration{}).Error; err != nil {
			return fmt.Errorf("failed to clear declarations: %w", err)
		}
		if err := tx.Where("file_name = ?", srcPath).Delete(&Reference{}).Error; err != nil {
			return fmt.Errorf("failed to clear references: %w", err)
		}
		if declarations.Len() > 0 {
			items := declarations.Items()
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error; err != nil {
				return fmt.Errorf("failed to save declarations: %w", err)
			}
		}
		if len(references) > 0 {
			rows := make([]Reference, len(references))
			for i, name := range references {
				rows[i] = Reference{FileName: srcPath, Name: name}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save references: %w", err)
			}
		}
		return nil
	})
}

// Unit returns the record stored for srcPath.
func (b *Bundler) Unit(srcPath string) (*Unit, error) {
	var unit Unit
	if err := b.db.First(&unit, "file_name = ?", srcPath).Error; err != nil {
		return nil, fmt.Errorf("unit %s: %w", srcPath, err)
	}
	return &unit, nil
}

// Units lists every stored unit ordered by file name.
func (b *Bundler) Units() ([]Unit, error) {
	var units []Unit
	err := b.db.Order("file_name").Find(&units).Error
	return units, err
}

// Source returns the stored source text of srcPath.
func (b *Bundler) Source(srcPath string) (string, error) {
	var file SourceFile
	if err := b.db.First(&file, "file_name = ?", srcPath).Error; err != nil {
		return "", fmt.Errorf("source %s: %w", srcPath, err)
	}
	return file.Contents, nil
}

// Declarations lists the top-level items of srcPath by name.
func (b *Bundler) Declarations(srcPath string) ([]Declaration, error) {
	var declarations []Declaration
	err := b.db.Where("file_name = ?", srcPath).Order("name").Find(&declarations).Error
	return declarations, err
}

// References lists the names srcPath reads, in order.
func (b *Bundler) References(srcPath string) ([]string, error) {
	var names []string
	err := b.db.Model(&Reference{}).Where("file_name = ?", srcPath).Order("name").Pluck("name", &names).Error
	return names, err
}

// Close closes the database connection.
func (b *Bundler) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OutputTree decodes the stored rewritten block.
func (u *Unit) OutputTree() (*syntax.Block, error) {
	return decodeTree(u.Output)
}

// InputTree decodes the stored input block.
func (u *Unit) InputTree() (*syntax.Block, error) {
	return decodeTree(u.Input)
}

// Stats returns the stored rewrite statistics.
func (u *Unit) Stats() rewriter.Stats {
	return rewriter.Stats{
		Conditionals: u.Conditionals,
		Hoisted:      u.Hoisted,
		Captures:     u.Captures,
		Scopes:       u.Scopes,
		Tidied:       u.Tidied,
	}
}

func treeJSON(b *syntax.Block) (string, error) {
	return nodeJSON(syntax.ToNode(b))
}

func nodeJSON(n *common.Node) (string, error) {
	var buf bytes.Buffer
	if err := common.PrintASTJSON(n, "", &buf, &common.PrintOptions{IncludeSpans: true}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeTree(text string) (*syntax.Block, error) {
	node, err := common.ReadASTJSON(bytes.NewBufferString(text))
	if err != nil {
		return nil, err
	}
	return syntax.FromNode(node)
}

// findDeclarations collects the named top-level items of a block tree.
func findDeclarations(srcPath string, block *common.Node) *common.List[Declaration] {
	list := &common.List[Declaration]{}
	for _, child := range block.Children {
		switch child.Name {
		case common.NameFn:
			list.Add(Declaration{FileName: srcPath, Name: child.Option(common.OptionName), Keyword: "fn"})
		case common.NameItem:
			if name := child.Option(common.OptionName); name != "" {
				list.Add(Declaration{FileName: srcPath, Name: name, Keyword: child.Option(common.OptionKeyword)})
			}
		}
	}
	return list
}

// findReferences traverses a code tree and collects all unique identifier
// references, sorted by name.
func findReferences(node *common.Node) []string {
	seen := make(map[string]bool)
	findReferencesRecursive(node, seen)
	references := make([]string, 0, len(seen))
	for name := range seen {
		references = append(references, name)
	}
	sort.Strings(references)
	return references
}

func findReferencesRecursive(node *common.Node, seen map[string]bool) {
	if node == nil {
		return
	}
	if node.Name == common.NameIdentifier {
		seen[node.Option(common.OptionName)] = true
	}
	for _, child := range node.Children {
		findReferencesRecursive(child, seen)
	}
}
