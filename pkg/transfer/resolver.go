package transfer

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/moco"
)

// Gateway fetches the records an invoice refers to.
// Both methods return nil without error when the record does not exist.
type Gateway interface {
	FetchProject(ctx context.Context, id int64) (*moco.Project, error)
	FetchCustomer(ctx context.Context, id int64) (*moco.Customer, error)
}

// ResolverConfig represents the configuration for Resolver.
type ResolverConfig struct {
	Concurrency  int           // Parallel invoice resolutions. Default: 4
	FetchTimeout time.Duration // Per request. Default: 30 seconds
	Properties   *PropertyMap  // Default: DefaultPropertyMap()
}

// Resolver turns invoices into transfers.
type Resolver struct {
	gateway      Gateway
	props        PropertyMap
	concurrency  int
	fetchTimeout time.Duration
}

// NewResolver creates a new Resolver.
func NewResolver(gateway Gateway, config ResolverConfig) *Resolver {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	fetchTimeout := config.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}

	props := DefaultPropertyMap()
	if config.Properties != nil {
		props = *config.Properties
	}

	return &Resolver{
		gateway:      gateway,
		props:        props,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
	}
}

// Resolve resolves every invoice to a transfer, dropping invoices whose
// project is not paid by direct debit. The result keeps the input order.
//
// Resolution is all or nothing: if any invoice fails, Resolve returns the
// first error and no transfers.
func (r *Resolver) Resolve(ctx context.Context, invoices []moco.Invoice) ([]Transfer, error) {
	results := make([]*Transfer, len(invoices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, invoice := range invoices {
		g.Go(func() error {
			transfer, err := r.resolveInvoice(gctx, invoice)
			if err != nil {
				return err
			}
			results[i] = transfer
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	transfers := make([]Transfer, 0, len(invoices))
	for _, t := range results {
		if t != nil {
			transfers = append(transfers, *t)
		}
	}

	slog.Info("Resolved transfers",
		"invoices", len(invoices),
		"transfers", len(transfers),
		"excluded", len(invoices)-len(transfers),
	)

	return transfers, nil
}

// resolveInvoice returns nil without error for an ineligible invoice.
func (r *Resolver) resolveInvoice(ctx context.Context, invoice moco.Invoice) (*Transfer, error) {
	if invoice.ProjectID == nil {
		return nil, &MissingProjectError{InvoiceID: invoice.ID}
	}
	projectID := *invoice.ProjectID

	project, err := r.fetchProject(ctx, projectID)
	if err != nil || project == nil {
		return nil, &MissingProjectError{InvoiceID: invoice.ID, ProjectID: projectID, Err: err}
	}

	method := project.CustomProperties.Get(r.props.Project.PaymentMethod)
	if method != r.props.Project.DirectDebit {
		slog.Debug("Skipping invoice not paid by direct debit",
			"invoice_id", invoice.ID,
			"identifier", invoice.Identifier,
			"project_id", projectID,
			"payment_method", method,
		)
		return nil, nil
	}

	customer, err := r.fetchCustomer(ctx, invoice.CustomerID)
	if err != nil || customer == nil {
		return nil, &MissingCustomerError{InvoiceID: invoice.ID, CustomerID: invoice.CustomerID, Err: err}
	}

	props := customer.CustomProperties
	mandateDate, err := ParseMandateDate(props.Get(r.props.Customer.MandateDate))
	if err != nil {
		return nil, &MandateDateError{InvoiceID: invoice.ID, CustomerID: customer.ID, Err: err}
	}

	return &Transfer{
		Total:            invoice.GrossTotal,
		InvoiceDate:      invoice.Date,
		Identifier:       invoice.Identifier,
		IBAN:             props.Get(r.props.Customer.IBAN),
		BIC:              props.Get(r.props.Customer.BIC),
		DebtorName:       props.Get(r.props.Customer.AccountHolder),
		MandateReference: props.Get(r.props.Customer.MandateReference),
		MandateDate:      mandateDate,
		InvoiceID:        invoice.ID,
		ProjectID:        projectID,
		CustomerID:       invoice.CustomerID,
	}, nil
}

func (r *Resolver) fetchProject(ctx context.Context, id int64) (*moco.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()
	return r.gateway.FetchProject(ctx, id)
}

func (r *Resolver) fetchCustomer(ctx context.Context, id int64) (*moco.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()
	return r.gateway.FetchCustomer(ctx, id)
}
