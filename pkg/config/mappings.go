package config

import "github.com/bastiangx/mathserve/pkg/suggest"

// DefaultMappings returns the built-in abbreviation table in display order.
func DefaultMappings() []suggest.Entry {
	out := make([]suggest.Entry, len(defaultMappings))
	copy(out, defaultMappings)
	return out
}

var defaultMappings = []suggest.Entry{
	// basic operations
	{Abbr: "fraction", Expansion: `\frac{numerator}{denominator}`},
	{Abbr: "sum", Expansion: `\sum_{i=1}^{n}`},
	{Abbr: "product", Expansion: `\prod_{i=1}^{n}`},
	{Abbr: "integral", Expansion: `\int_{a}^{b}`},
	{Abbr: "double integral", Expansion: `\iint_{D}`},
	{Abbr: "triple integral", Expansion: `\iiint_{V}`},
	{Abbr: "contour integral", Expansion: `\oint_{C}`},

	// roots, powers
	{Abbr: "square root", Expansion: `\sqrt{x}`},
	{Abbr: "nth root", Expansion: `\sqrt[n]{x}`},
	{Abbr: "power", Expansion: `x^{n}`},
	{Abbr: "subscript", Expansion: `x_{i}`},

	// limits
	{Abbr: "infinity", Expansion: `\infty`},
	{Abbr: "limit", Expansion: `\lim_{x \to \infty}`},
	{Abbr: "limit to zero", Expansion: `\lim_{x \to 0}`},
	{Abbr: "limit from above", Expansion: `\lim_{x \to a^+}`},
	{Abbr: "limit from below", Expansion: `\lim_{x \to a^-}`},

	// matrices
	{Abbr: "matrix", Expansion: `\begin{matrix} a & b \\ c & d \end{matrix}`},
	{Abbr: "pmatrix", Expansion: `\begin{pmatrix} a & b \\ c & d \end{pmatrix}`},
	{Abbr: "bmatrix", Expansion: `\begin{bmatrix} a & b \\ c & d \end{bmatrix}`},
	{Abbr: "vmatrix", Expansion: `\begin{vmatrix} a & b \\ c & d \end{vmatrix}`},

	// greek
	{Abbr: "alpha", Expansion: `\alpha`},
	{Abbr: "beta", Expansion: `\beta`},
	{Abbr: "gamma", Expansion: `\gamma`},
	{Abbr: "delta", Expansion: `\Delta`},
	{Abbr: "theta", Expansion: `\theta`},
	{Abbr: "pi", Expansion: `\pi`},
	{Abbr: "sigma", Expansion: `\sigma`},
	{Abbr: "omega", Expansion: `\omega`},

	// operators, relations
	{Abbr: "plus minus", Expansion: `\pm`},
	{Abbr: "minus plus", Expansion: `\mp`},
	{Abbr: "times", Expansion: `\times`},
	{Abbr: "div", Expansion: `\div`},
	{Abbr: "not equals", Expansion: `\neq`},
	{Abbr: "approximately", Expansion: `\approx`},
	{Abbr: "less or equal", Expansion: `\leq`},
	{Abbr: "greater or equal", Expansion: `\geq`},

	// sets
	{Abbr: "intersection", Expansion: `\cap`},
	{Abbr: "union", Expansion: `\cup`},
	{Abbr: "big intersection", Expansion: `\bigcap_{i=1}^n`},
	{Abbr: "big union", Expansion: `\bigcup_{i=1}^n`},
	{Abbr: "subset", Expansion: `\subset`},
	{Abbr: "proper subset", Expansion: `\subsetneq`},
	{Abbr: "superset", Expansion: `\supset`},
	{Abbr: "proper superset", Expansion: `\supsetneq`},
	{Abbr: "not subset", Expansion: `\not\subset`},
	{Abbr: "element of", Expansion: `\in`},
	{Abbr: "not element of", Expansion: `\notin`},
	{Abbr: "empty set", Expansion: `\emptyset`},
	{Abbr: "null set", Expansion: `\varnothing`},
	{Abbr: "set minus", Expansion: `\setminus`},
	{Abbr: "power set", Expansion: `\mathcal{P}`},
	{Abbr: "natural numbers", Expansion: `\mathbb{N}`},
	{Abbr: "integers", Expansion: `\mathbb{Z}`},
	{Abbr: "rational numbers", Expansion: `\mathbb{Q}`},
	{Abbr: "real numbers", Expansion: `\mathbb{R}`},
	{Abbr: "complex numbers", Expansion: `\mathbb{C}`},
	{Abbr: "set brackets", Expansion: `\{x : x > 0\}`},
	{Abbr: "cartesian product", Expansion: `\times`},
	{Abbr: "therefore", Expansion: `\therefore`},
	{Abbr: "because", Expansion: `\because`},

	// calculus
	{Abbr: "partial", Expansion: `\partial`},
	{Abbr: "nabla", Expansion: `\nabla`},
	{Abbr: "derivative", Expansion: `\frac{d}{dx}`},
	{Abbr: "partial derivative", Expansion: `\frac{\partial}{\partial x}`},
	{Abbr: "sine", Expansion: `\sin`},
	{Abbr: "cosine", Expansion: `\cos`},
	{Abbr: "tangent", Expansion: `\tan`},

	// arrows, accents
	{Abbr: "rightarrow", Expansion: `\rightarrow`},
	{Abbr: "leftarrow", Expansion: `\leftarrow`},
	{Abbr: "leftrightarrow", Expansion: `\leftrightarrow`},
	{Abbr: "Rightarrow", Expansion: `\Rightarrow`},
	{Abbr: "Leftarrow", Expansion: `\Leftarrow`},
	{Abbr: "hat", Expansion: `\hat{x}`},
	{Abbr: "bar", Expansion: `\bar{x}`},
	{Abbr: "vec", Expansion: `\vec{x}`},

	// spacing
	{Abbr: "quad space", Expansion: `\quad`},
	{Abbr: "text", Expansion: `\text{text here}`},
	{Abbr: "newline", Expansion: `\\`},
	{Abbr: "horizontal space", Expansion: `\hspace{1cm}`},
	{Abbr: "vertical space", Expansion: `\vspace{1cm}`},

	// probability, statistics
	{Abbr: "probability", Expansion: `\mathbb{P}(A)`},
	{Abbr: "conditional probability", Expansion: `\mathbb{P}(A|B)`},
	{Abbr: "expected value", Expansion: `\mathbb{E}[X]`},
	{Abbr: "variance", Expansion: `\text{Var}(X)`},
	{Abbr: "standard deviation", Expansion: `\sigma`},
	{Abbr: "normal distribution", Expansion: `\mathcal{N}(\mu,\sigma^2)`},
	{Abbr: "binomial distribution", Expansion: `\text{Bin}(n,p)`},
	{Abbr: "random variable", Expansion: `\mathcal{X}`},
	{Abbr: "independent", Expansion: `\perp`},
	{Abbr: "correlation", Expansion: `\rho`},
	{Abbr: "covariance", Expansion: `\text{Cov}(X,Y)`},
	{Abbr: "combination", Expansion: `\binom{n}{k}`},
	{Abbr: "permutation", Expansion: `P(n,k)`},
	{Abbr: "sample space", Expansion: `\Omega`},
	{Abbr: "independence", Expansion: `\perp\!\!\perp`},
	{Abbr: "proportional to", Expansion: `\propto`},
	{Abbr: "chi-squared", Expansion: `\chi^2`},
	{Abbr: "beta distribution", Expansion: `\text{Beta}(\alpha,\beta)`},
	{Abbr: "gamma distribution", Expansion: `\text{Gamma}(k,\theta)`},
	{Abbr: "poisson distribution", Expansion: `\text{Pois}(\lambda)`},
	{Abbr: "uniform distribution", Expansion: `\text{Unif}(a,b)`},
	{Abbr: "exponential distribution", Expansion: `\text{Exp}(\lambda)`},

	// logic
	{Abbr: "logical and", Expansion: `\land`},
	{Abbr: "logical or", Expansion: `\lor`},
	{Abbr: "logical not", Expansion: `\neg`},
	{Abbr: "implies", Expansion: `\implies`},
	{Abbr: "if and only if", Expansion: `\iff`},
	{Abbr: "forall", Expansion: `\forall`},
	{Abbr: "exists", Expansion: `\exists`},
	{Abbr: "not exists", Expansion: `\nexists`},
	{Abbr: "models", Expansion: `\models`},
	{Abbr: "proves", Expansion: `\vdash`},
	{Abbr: "contradiction", Expansion: `\bot`},
	{Abbr: "tautology", Expansion: `\top`},
}
