package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

// validacion.go — document-level business rule validation.
// Every rule is checked and every violation collected; there is no fail-fast
// so the caller can render one consolidated error list.

var correoRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Mensajes de validación. The UI renders these verbatim.
const (
	MsgNombreRequerido        = "El nombre o razón social es requerido."
	MsgCiudadRequerida        = "La ciudad es requerida."
	MsgDireccionRequerida     = "La dirección es requerida."
	MsgTelefonoRequerido      = "El teléfono es requerido."
	MsgCorreoRequerido        = "El correo es requerido."
	MsgCorreoInvalido         = "El correo tiene un formato inválido."
	MsgFechaRequerida         = "La fecha es requerida."
	MsgFechaEntregaRequerida  = "Fecha de entrega es requerida."
	MsgSinProductos           = "Debes agregar al menos un producto a la lista."
	MsgCantidadInvalida       = "Ingrese una cantidad válida"
	MsgValorUnitarioRequerido = "valor unitario requerido"
)

// ValidarDocumento collects every violated rule on the document snapshot.
// An empty result means the document may be submitted.
func ValidarDocumento(d *model.Documento) apierror.ValidationErrors {
	var errs apierror.ValidationErrors

	add := func(campo, mensaje string) {
		errs = append(errs, apierror.FieldError{Campo: campo, Mensaje: mensaje})
	}

	// Cliente
	if strings.TrimSpace(d.Cliente.Nombre) == "" {
		add("cliente.nombre", MsgNombreRequerido)
	}
	if requiereDireccion(d.Tipo) {
		if strings.TrimSpace(d.Cliente.Ciudad) == "" {
			add("cliente.ciudad", MsgCiudadRequerida)
		}
		if strings.TrimSpace(d.Cliente.Direccion) == "" {
			add("cliente.direccion", MsgDireccionRequerida)
		}
	}
	if strings.TrimSpace(d.Cliente.Telefono) == "" {
		add("cliente.telefono", MsgTelefonoRequerido)
	}
	correo := strings.TrimSpace(d.Cliente.Correo)
	switch {
	case correo == "":
		add("cliente.correo", MsgCorreoRequerido)
	case !correoRe.MatchString(correo):
		add("cliente.correo", MsgCorreoInvalido)
	}

	// Fechas
	switch d.Tipo {
	case model.TipoPedido:
		if d.FechaAgendada == nil {
			add("fecha_agendada", MsgFechaRequerida)
		}
		if d.FechaEntrega == nil {
			add("fecha_entrega", MsgFechaEntregaRequerida)
		}
	case model.TipoRemision:
		if d.FechaRemision == nil {
			add("fecha_remision", MsgFechaRequerida)
		}
	}

	// Items
	if len(d.Items) == 0 {
		add("items", MsgSinProductos)
	}
	for i, it := range d.Items {
		n := i + 1
		if it.Cantidad <= 0 {
			add(fmt.Sprintf("items[%d].cantidad", i),
				fmt.Sprintf("Producto %d: %s", n, MsgCantidadInvalida))
		}
		if it.PrecioUnitario.Sign() <= 0 {
			add(fmt.Sprintf("items[%d].precio_unitario", i),
				fmt.Sprintf("Producto %d: %s", n, MsgValorUnitarioRequerido))
		}
	}

	return errs
}

// requiereDireccion: delivery-bound kinds need a destination; a cotización
// only needs contact data.
func requiereDireccion(tipo string) bool {
	return tipo == model.TipoPedido || tipo == model.TipoRemision
}
