// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/depshed/depshed/internal/boundary"
	"github.com/depshed/depshed/internal/config"
	"github.com/depshed/depshed/internal/extract"
	"github.com/depshed/depshed/internal/scan"
	"github.com/depshed/depshed/internal/testutil"
	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"
)

const (
	// sampleConfig is a representative .depshed.cue touching every section.
	sampleConfig = `
source_roots: {
	main: ["src/main/java", "src/main/kotlin"]
	test: ["src/test/java"]
}
markers: ["pom.xml", "build.gradle", "build.gradle.kts"]
extensions: [".java", ".kt"]
exclude: ["generated/", "**/fixtures/**"]
workers: 4
rule: {
	name: "legacy-client"
	coordinates: ["com.example:legacy-client", "com.example:legacy-client-next:2.0"]
	blocking_types: ["com.example.legacy.Client", "com.example.legacy.Session"]
	blocking_annotations: ["com.example.legacy.Managed"]
	blocking_packages: ["com.example.legacy"]
	neutral_shims: ["com.example.compat.Client"]
}
ui: format: "json"
`

	// sampleJava exercises imports, annotations, qualified references and
	// literals the reader has to skip.
	sampleJava = `package com.example.orders;

import java.util.List;
import java.util.Map;
import javax.annotation.PostConstruct;
import javax.annotation.*;
import static javax.annotation.Resource.AuthenticationType.CONTAINER;

/**
 * Order service. Mentions javax.annotation.Resource only in a comment.
 */
@javax.annotation.Generated("tool")
public class OrderService {
    private static final String TEXT = "javax.annotation.PreDestroy";
    private final Map<String, List<Order>> orders = new java.util.HashMap<>();

    @PostConstruct
    void init() {
        Object mode = javax.annotation.Resource.AuthenticationType.APPLICATION;
        char c = '"';
        String block = """
            @PreDestroy is not an annotation here
            """;
    }

    @Resource(name = "orders")
    public List<Order> all() { return List.copyOf(orders.values().iterator().next()); }
}
`

	sampleKotlin = `package com.example.billing

import jakarta.annotation.PreDestroy as Stop
import com.example.compat.Resource

class Billing(private val resource: Resource) {
    @Stop fun close() { println("closing billing") }
}
`

	samplePom = `<project>
  <artifactId>%s</artifactId>
  <dependencies>
    <dependency>
      <groupId>javax.annotation</groupId>
      <artifactId>javax.annotation-api</artifactId>
      <version>1.3.2</version>
    </dependency>
  </dependencies>
</project>
`
)

func defaultCatalog(b *testing.B) *signature.Catalog {
	b.Helper()

	c, err := signature.NewCatalog(signature.DefaultRule())
	if err != nil {
		b.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

// BenchmarkConfigLoad benchmarks CUE validation and viper decoding of a
// repository-local configuration file.
func BenchmarkConfigLoad(b *testing.B) {
	root := b.TempDir()
	testutil.MustWriteFile(b, filepath.Join(root, config.LocalConfigFileName), []byte(sampleConfig))
	provider := config.NewProvider()
	opts := config.LoadOptions{ScanRoot: root}

	b.ResetTimer()
	for b.Loop() {
		if _, err := provider.Load(context.Background(), opts); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

// BenchmarkParseJava benchmarks the source reader on a Java file.
func BenchmarkParseJava(b *testing.B) {
	src := []byte(sampleJava)

	b.ResetTimer()
	for b.Loop() {
		artifact.Parse("src/main/java/com/example/orders/OrderService.java", src)
	}
}

// BenchmarkParseKotlin benchmarks the source reader on a Kotlin file.
func BenchmarkParseKotlin(b *testing.B) {
	src := []byte(sampleKotlin)

	b.ResetTimer()
	for b.Loop() {
		artifact.Parse("src/main/kotlin/com/example/billing/Billing.kt", src)
	}
}

// BenchmarkExtract benchmarks the strategy chain over a parsed artifact.
func BenchmarkExtract(b *testing.B) {
	a := artifact.Parse("src/main/java/com/example/orders/OrderService.java", []byte(sampleJava))
	extractor := extract.New(defaultCatalog(b))

	b.ResetTimer()
	for b.Loop() {
		if sigs := extractor.Extract(a); len(sigs) == 0 {
			b.Fatal("Extract found no signatures")
		}
	}
}

// BenchmarkResolve benchmarks module resolution over a deep catalogue.
// Paths repeat, so this mostly measures the memoized path.
func BenchmarkResolve(b *testing.B) {
	catalogue := boundary.NewCatalogue()
	var paths []string
	for i := range 50 {
		dir := fmt.Sprintf("services/svc%02d", i)
		for _, d := range []string{dir, dir + "/api", dir + "/impl"} {
			if err := catalogue.Record(d); err != nil {
				b.Fatalf("Record failed: %v", err)
			}
		}
		paths = append(paths,
			dir+"/api/src/main/java/Api.java",
			dir+"/impl/src/main/java/deep/pkg/Impl.java",
			dir+"/src/test/java/SvcTest.java")
	}
	resolver, err := boundary.NewResolver(catalogue.Freeze(), scan.DefaultOptions().SourceRoots)
	if err != nil {
		b.Fatalf("NewResolver failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		for _, p := range paths {
			resolver.Resolve(p)
		}
	}
}

// BenchmarkScan benchmarks a dry-run scan of a generated multi-module
// repository. It covers the walk, the worker pool, both phases and the
// descriptor parsers.
func BenchmarkScan(b *testing.B) {
	root := b.TempDir()
	files := map[string]string{"pom.xml": fmt.Sprintf(samplePom, "parent")}
	for i := range 20 {
		mod := fmt.Sprintf("module%02d", i)
		files[mod+"/pom.xml"] = fmt.Sprintf(samplePom, mod)
		files[mod+"/src/main/kotlin/Billing.kt"] = sampleKotlin
		if i%2 == 0 {
			files[mod+"/src/main/java/OrderService.java"] = sampleJava
		}
	}
	testutil.WriteTree(b, root, files)

	opts := scan.DefaultOptions()
	opts.Workers = 4
	scanner := scan.New(defaultCatalog(b), opts)

	b.ResetTimer()
	for b.Loop() {
		report, err := scanner.Run(context.Background(), root)
		if err != nil {
			b.Fatalf("Run failed: %v", err)
		}
		if len(report.Outcomes) != 21 {
			b.Fatalf("len(Outcomes) = %d, want 21", len(report.Outcomes))
		}
	}
}
