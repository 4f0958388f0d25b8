package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

type productsFlags struct {
	category string
	sort     string
	query    string
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &productsFlags{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Long: `List catalog products, optionally narrowed to one category and a
search query, and sorted by price.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd, rootOpts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "only products of this category")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort by price (price-asc|price-desc)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "search names and descriptions")

	return cmd
}

func runProducts(cmd *cobra.Command, opts *RootOptions, flags *productsFlags) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if flags.sort != "" && flags.sort != catalog.SortPriceAsc && flags.sort != catalog.SortPriceDesc {
		return s.out.Fail(ExitFailure, ErrCodeInvalidArgument, "неизвестная сортировка "+flags.sort, nil)
	}

	products := filterProducts(s.app.Catalog, flags)
	return s.out.Success(products, func(w io.Writer) {
		writeProducts(w, products)
	})
}

func filterProducts(cat *catalog.Catalog, flags *productsFlags) []entity.Product {
	products := []entity.Product{}
	query := strings.TrimSpace(flags.query)
	if query != "" {
		for _, p := range cat.Search(query) {
			if flags.category == "" || p.Category == flags.category {
				products = append(products, p)
			}
		}
	} else {
		products = append(products, cat.ListByCategory(flags.category)...)
	}
	catalog.SortByPrice(products, flags.sort)
	return products
}

// NewProductCommand creates the product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "product <id>",
		Short:         "Show one product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := parseInt(s.out, "id", args[0])
			if err != nil {
				return err
			}
			product, ok := s.app.Catalog.FindByID(id)
			if !ok {
				return s.out.Fail(ExitFailure, ErrCodeNotFound, "товар не найден", catalog.ErrProductNotFound)
			}
			return s.out.Success(product, func(w io.Writer) {
				writeProduct(w, product)
			})
		},
	}
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "categories",
		Short:         "List product categories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			categories := s.app.Catalog.Categories()
			return s.out.Success(categories, func(w io.Writer) {
				writeCategories(w, categories)
			})
		},
	}
}
